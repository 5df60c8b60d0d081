package uptime

import (
	"context"
	"math/rand"
	"testing"

	"go.uber.org/zap"

	"stationuptime/internal/models"
)

func computeAll(t *testing.T, ownership map[uint32][]uint32, reports map[uint32][]models.Report) []models.StationUptime {
	t.Helper()
	engine := NewEngine(4, zap.NewNop())
	return engine.Compute(context.Background(), ownership, reports)
}

func singlePercent(t *testing.T, ownership map[uint32][]uint32, reports map[uint32][]models.Report, stationID uint32) int {
	t.Helper()
	results := computeAll(t, ownership, reports)
	for _, r := range results {
		if r.StationID == stationID {
			return r.Percent
		}
	}
	t.Fatalf("station %d missing from results %v", stationID, results)
	return 0
}

func TestComputeTwoChargersSequentialWindows(t *testing.T) {
	// Chargers covering [0,50000) up and [50000,100000) down: half the
	// reported time is available.
	ownership := map[uint32][]uint32{0: {1001, 1002}}
	reports := map[uint32][]models.Report{
		1001: {{ChargerID: 1001, Start: 0, End: 50000, Up: true}},
		1002: {{ChargerID: 1002, Start: 50000, End: 100000, Up: false}},
	}
	if got := singlePercent(t, ownership, reports, 0); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
}

func TestComputeOverlappingChargersCountOnce(t *testing.T) {
	// One charger up and one down over the same window: the station is
	// available the whole time, and the window counts once, not twice.
	ownership := map[uint32][]uint32{7: {1, 2}}
	reports := map[uint32][]models.Report{
		1: {{ChargerID: 1, Start: 0, End: 100, Up: true}},
		2: {{ChargerID: 2, Start: 0, End: 100, Up: false}},
	}
	if got := singlePercent(t, ownership, reports, 7); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}

func TestComputeUnreportedGapNotCounted(t *testing.T) {
	// A gap no charger reported in is not reporting time at all, so it
	// cannot drag the percentage down.
	ownership := map[uint32][]uint32{3: {9}}
	reports := map[uint32][]models.Report{
		9: {
			{ChargerID: 9, Start: 0, End: 50, Up: true},
			{ChargerID: 9, Start: 100, End: 150, Up: true},
		},
	}
	if got := singlePercent(t, ownership, reports, 3); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}

func TestComputeOutOfOrderReports(t *testing.T) {
	ownership := map[uint32][]uint32{0: {1001}}
	reports := map[uint32][]models.Report{
		1001: {
			{ChargerID: 1001, Start: 50000, End: 100000, Up: false},
			{ChargerID: 1001, Start: 0, End: 50000, Up: true},
		},
	}
	if got := singlePercent(t, ownership, reports, 0); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
}

func TestComputeStationWithoutReportsEmittedAsZero(t *testing.T) {
	ownership := map[uint32][]uint32{
		1: {100},
		2: {},
	}
	reports := map[uint32][]models.Report{}

	results := computeAll(t, ownership, reports)
	if len(results) != 2 {
		t.Fatalf("every declared station must be emitted, got %v", results)
	}
	for _, r := range results {
		if r.Percent != 0 {
			t.Errorf("station %d without reports should be 0, got %d", r.StationID, r.Percent)
		}
	}
}

func TestComputeSortedByStationID(t *testing.T) {
	ownership := map[uint32][]uint32{
		30: {3}, 10: {1}, 20: {2},
	}
	reports := map[uint32][]models.Report{
		1: {{ChargerID: 1, Start: 0, End: 10, Up: true}},
		2: {{ChargerID: 2, Start: 0, End: 10, Up: false}},
		3: {{ChargerID: 3, Start: 0, End: 10, Up: true}},
	}

	results := computeAll(t, ownership, reports)
	want := []models.StationUptime{
		{StationID: 10, Percent: 100},
		{StationID: 20, Percent: 0},
		{StationID: 30, Percent: 100},
	}
	if len(results) != len(want) {
		t.Fatalf("result count mismatch: %v", results)
	}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("result[%d] = %v, want %v", i, results[i], want[i])
		}
	}
}

func TestComputeEmptyOwnership(t *testing.T) {
	if got := computeAll(t, nil, nil); got != nil {
		t.Fatalf("expected nil results, got %v", got)
	}
}

func TestComputeOrderIndependence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	base := []models.Report{
		{ChargerID: 1, Start: 0, End: 400, Up: true},
		{ChargerID: 1, Start: 350, End: 700, Up: false},
		{ChargerID: 2, Start: 100, End: 500, Up: true},
		{ChargerID: 2, Start: 600, End: 900, Up: false},
		{ChargerID: 3, Start: 250, End: 250, Up: true},
		{ChargerID: 3, Start: 800, End: 1000, Up: true},
	}
	ownership := map[uint32][]uint32{5: {1, 2, 3}}

	group := func(reports []models.Report) map[uint32][]models.Report {
		grouped := make(map[uint32][]models.Report)
		for _, r := range reports {
			grouped[r.ChargerID] = append(grouped[r.ChargerID], r)
		}
		return grouped
	}

	want := singlePercent(t, ownership, group(base), 5)
	for i := 0; i < 20; i++ {
		shuffled := make([]models.Report, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		if got := singlePercent(t, ownership, group(shuffled), 5); got != want {
			t.Fatalf("permutation %d changed percent: %d vs %d", i, got, want)
		}
	}
}

func TestComputeUpNeverExceedsReporting(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 50; run++ {
		ownership := map[uint32][]uint32{1: {10, 11, 12}}
		reports := make(map[uint32][]models.Report)
		for _, chargerID := range ownership[1] {
			n := rng.Intn(8)
			for i := 0; i < n; i++ {
				start := uint64(rng.Intn(1000))
				end := start + uint64(rng.Intn(500))
				reports[chargerID] = append(reports[chargerID], models.Report{
					ChargerID: chargerID,
					Start:     start,
					End:       end,
					Up:        rng.Intn(2) == 0,
				})
			}
		}

		result := ComputeStation(1, ownership[1], reports)
		if result.Percent < 0 || result.Percent > 100 {
			t.Fatalf("run %d: percent %d out of range", run, result.Percent)
		}

		var reportingSets, upSets []IntervalSet
		for _, chargerID := range ownership[1] {
			merged := BuildChargerIntervals(reports[chargerID])
			reportingSets = append(reportingSets, merged.Reporting)
			upSets = append(upSets, merged.Up)
		}
		reportingTotal := TotalDuration(Union(reportingSets...))
		upTotal := TotalDuration(Union(upSets...))
		if upTotal > reportingTotal {
			t.Fatalf("run %d: up %d exceeds reporting %d", run, upTotal, reportingTotal)
		}
	}
}
