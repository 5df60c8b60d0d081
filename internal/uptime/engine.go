package uptime

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"

	"stationuptime/internal/models"
)

// Engine computes station availability percentages. Stateless between calls;
// safe for concurrent use.
type Engine struct {
	workers int
	logger  *zap.Logger
}

// NewEngine builds an engine with the given worker count. Zero or negative
// means one worker per CPU.
func NewEngine(workers int, logger *zap.Logger) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{workers: workers, logger: logger}
}

// Compute returns one StationUptime per entry in ownership, sorted by
// ascending station ID. Stations whose chargers reported nothing get
// percent 0 rather than being dropped, so the output always covers every
// declared station. Station computations are independent and are fanned out
// across the worker pool.
func (e *Engine) Compute(ctx context.Context, ownership map[uint32][]uint32, reports map[uint32][]models.Report) []models.StationUptime {
	if len(ownership) == 0 {
		return nil
	}

	stationIDs := make([]uint32, 0, len(ownership))
	for id := range ownership {
		stationIDs = append(stationIDs, id)
	}

	workers := e.workers
	if workers > len(stationIDs) {
		workers = len(stationIDs)
	}

	jobs := make(chan uint32)
	out := make(chan models.StationUptime, len(stationIDs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for stationID := range jobs {
				out <- ComputeStation(stationID, ownership[stationID], reports)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, id := range stationIDs {
			select {
			case jobs <- id:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]models.StationUptime, 0, len(stationIDs))
	for r := range out {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].StationID < results[j].StationID })

	e.logger.Debug("uptime run complete",
		zap.Int("stations", len(results)),
		zap.Int("workers", workers))
	return results
}

// ComputeStation aggregates one station: each owned charger's reports are
// merged individually, the per-charger sets are unioned across the station,
// and the two union durations are reduced to a floored percentage. Time
// covered by several chargers at once counts exactly once in both unions.
func ComputeStation(stationID uint32, chargers []uint32, reports map[uint32][]models.Report) models.StationUptime {
	reportingSets := make([]IntervalSet, 0, len(chargers))
	upSets := make([]IntervalSet, 0, len(chargers))
	for _, chargerID := range chargers {
		merged := BuildChargerIntervals(reports[chargerID])
		if len(merged.Reporting) == 0 {
			continue
		}
		reportingSets = append(reportingSets, merged.Reporting)
		upSets = append(upSets, merged.Up)
	}

	reportingTotal := TotalDuration(Union(reportingSets...))
	upTotal := TotalDuration(Union(upSets...))

	return models.StationUptime{
		StationID: stationID,
		Percent:   Percent(upTotal, reportingTotal),
	}
}
