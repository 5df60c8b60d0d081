package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"stationuptime/internal/models"
	"stationuptime/internal/service"
)

// maxReportFileBytes caps uploaded report files.
const maxReportFileBytes = 32 << 20

// UptimeProvider is the surface handlers need from the uptime service.
type UptimeProvider interface {
	ComputeFromReader(ctx context.Context, r io.Reader) ([]models.StationUptime, error)
	StationPercent(ctx context.Context, stationID uint32) (int, error)
	LatestRun(ctx context.Context) ([]models.StationUptime, time.Time, error)
	ComputeLive(ctx context.Context) ([]models.StationUptime, error)
}

// NewComputeHandler returns POST /v1/uptime/compute handler. The request
// body is a whole report file in the section-delimited text format.
func NewComputeHandler(svc UptimeProvider, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := http.MaxBytesReader(w, r.Body, maxReportFileBytes)
		results, err := svc.ComputeFromReader(r.Context(), body)
		if err != nil {
			if errors.Is(err, service.ErrInvalidReportFile) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			logger.Error("uptime computation failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to compute uptime")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"stations": len(results),
			"results":  results,
		})
	}
}

// NewLatestRunHandler returns GET /v1/uptime/latest handler.
func NewLatestRunHandler(svc UptimeProvider, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, computedAt, err := svc.LatestRun(r.Context())
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				writeError(w, http.StatusNotFound, "no uptime run recorded yet")
				return
			}
			logger.Error("failed to load latest run", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load latest run")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"computed_at": computedAt.UTC(),
			"results":     results,
		})
	}
}

// NewStationUptimeHandler returns GET /v1/stations/uptime?station_id=N handler.
func NewStationUptimeHandler(svc UptimeProvider, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("station_id")
		if raw == "" {
			writeError(w, http.StatusBadRequest, "station_id is required")
			return
		}
		stationID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "station_id must be a 32-bit unsigned integer")
			return
		}

		percent, err := svc.StationPercent(r.Context(), uint32(stationID))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				writeError(w, http.StatusNotFound, "no uptime recorded for station")
				return
			}
			logger.Error("failed to load station uptime", zap.Uint64("station_id", stationID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load station uptime")
			return
		}
		writeJSON(w, http.StatusOK, models.StationUptime{StationID: uint32(stationID), Percent: percent})
	}
}

// NewLiveUptimeHandler returns GET /v1/uptime/live handler, computing over
// reports ingested from connected chargers.
func NewLiveUptimeHandler(svc UptimeProvider, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := svc.ComputeLive(r.Context())
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				writeError(w, http.StatusNotFound, "no ownership snapshot loaded")
				return
			}
			logger.Error("live uptime computation failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to compute live uptime")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"stations": len(results),
			"results":  results,
		})
	}
}
