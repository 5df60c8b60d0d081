package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"stationuptime/internal/ingest"
	"stationuptime/internal/input"
	"stationuptime/internal/models"
	"stationuptime/internal/redisstore"
	"stationuptime/internal/repository"
	"stationuptime/internal/uptime"
)

// Sentinel errors surfaced to handlers.
var (
	ErrInvalidReportFile = errors.New("invalid report file")
	ErrNotFound          = errors.New("not found")
)

// UptimeService coordinates parsing, computation, persistence and caching.
type UptimeService struct {
	engine   *uptime.Engine
	runs     *repository.UptimeRepository
	stations *repository.StationRepository
	cache    *redisstore.Store
	live     *ingest.Store
	logger   *zap.Logger
}

// NewUptimeService builds service.
func NewUptimeService(
	engine *uptime.Engine,
	runs *repository.UptimeRepository,
	stations *repository.StationRepository,
	cache *redisstore.Store,
	live *ingest.Store,
	logger *zap.Logger,
) *UptimeService {
	return &UptimeService{
		engine:   engine,
		runs:     runs,
		stations: stations,
		cache:    cache,
		live:     live,
		logger:   logger,
	}
}

// ComputeFromReader parses a full report file, refreshes the stored
// ownership snapshot, computes every station's uptime, persists the run and
// caches the per-station percents. Cache failures are logged but do not fail
// the run.
func (s *UptimeService) ComputeFromReader(ctx context.Context, r io.Reader) ([]models.StationUptime, error) {
	file, err := input.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReportFile, err)
	}

	if err := s.stations.ReplaceOwnership(ctx, file.Ownership); err != nil {
		return nil, err
	}

	results := s.engine.Compute(ctx, file.Ownership, file.Reports)

	if _, err := s.runs.SaveRun(ctx, results); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SaveRun(ctx, results); err != nil {
			s.logger.Warn("failed to cache uptime run", zap.Error(err))
		}
	}

	s.logger.Info("uptime run computed", zap.Int("stations", len(results)))
	return results, nil
}

// StationPercent returns the latest percent for one station, cache first.
func (s *UptimeService) StationPercent(ctx context.Context, stationID uint32) (int, error) {
	if s.cache != nil {
		percent, err := s.cache.Percent(ctx, stationID)
		if err == nil {
			return percent, nil
		}
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("uptime cache read failed", zap.Uint32("station_id", stationID), zap.Error(err))
		}
	}

	percent, err := s.runs.LatestByStation(ctx, stationID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return percent, nil
}

// LatestRun returns the most recent persisted run.
func (s *UptimeService) LatestRun(ctx context.Context) ([]models.StationUptime, time.Time, error) {
	results, computedAt, err := s.runs.LatestRun(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	return results, computedAt, nil
}

// ComputeLive runs the engine over reports ingested from live chargers,
// using the ownership snapshot from the last uploaded file.
func (s *UptimeService) ComputeLive(ctx context.Context) ([]models.StationUptime, error) {
	ownership, err := s.stations.Ownership(ctx)
	if err != nil {
		return nil, err
	}
	if len(ownership) == 0 {
		return nil, fmt.Errorf("%w: no ownership snapshot loaded", ErrNotFound)
	}
	return s.engine.Compute(ctx, ownership, s.live.Snapshot()), nil
}
