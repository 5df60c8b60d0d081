// Package ingest accumulates availability reports pushed by live chargers.
// It is the in-memory source for live uptime queries, keeping the same
// validated-report contract as the file parser.
package ingest

import (
	"sync"

	"stationuptime/internal/models"
)

// Store collects reports grouped by charger. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	reports map[uint32][]models.Report
}

// NewStore returns empty store.
func NewStore() *Store {
	return &Store{reports: make(map[uint32][]models.Report)}
}

// Add appends one validated report.
func (s *Store) Add(report models.Report) {
	s.mu.Lock()
	s.reports[report.ChargerID] = append(s.reports[report.ChargerID], report)
	s.mu.Unlock()
}

// Snapshot returns a copy of all accumulated reports keyed by charger, safe
// to hand to the engine while ingestion continues.
func (s *Store) Snapshot() map[uint32][]models.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[uint32][]models.Report, len(s.reports))
	for chargerID, reports := range s.reports {
		copied := make([]models.Report, len(reports))
		copy(copied, reports)
		snapshot[chargerID] = copied
	}
	return snapshot
}

// Len returns the total report count across all chargers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, reports := range s.reports {
		total += len(reports)
	}
	return total
}

// Reset discards all accumulated reports.
func (s *Store) Reset() {
	s.mu.Lock()
	s.reports = make(map[uint32][]models.Report)
	s.mu.Unlock()
}
