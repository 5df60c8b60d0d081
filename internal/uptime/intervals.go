package uptime

import (
	"fmt"
	"math/bits"
	"sort"

	"stationuptime/internal/models"
)

// IntervalSet is a sequence of non-overlapping, non-adjacent intervals
// sorted by start time. Produced by Merge; treated as read-only afterwards.
type IntervalSet []models.Interval

// Merge sorts the given intervals and collapses every overlapping or exactly
// adjacent pair into one, returning the minimal covering set. The input slice
// is not modified. Zero-length intervals are legal and contribute nothing,
// but participate in the sweep like any other interval.
func Merge(intervals []models.Interval) IntervalSet {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]models.Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	merged := make(IntervalSet, 0, len(sorted))
	current := sorted[0]
	if current.End < current.Start {
		panic(fmt.Sprintf("uptime: interval end %d before start %d", current.End, current.Start))
	}
	for _, iv := range sorted[1:] {
		if iv.End < iv.Start {
			panic(fmt.Sprintf("uptime: interval end %d before start %d", iv.End, iv.Start))
		}
		if iv.Start <= current.End {
			if iv.End > current.End {
				current.End = iv.End
			}
			continue
		}
		merged = append(merged, current)
		current = iv
	}
	return append(merged, current)
}

// ChargerIntervals holds a single charger's merged report windows.
type ChargerIntervals struct {
	Reporting IntervalSet
	Up        IntervalSet
}

// BuildChargerIntervals merges one charger's reports into its reporting
// union (every report window regardless of status) and its up union (windows
// reported available). Reports may arrive unsorted and overlapping.
func BuildChargerIntervals(reports []models.Report) ChargerIntervals {
	if len(reports) == 0 {
		return ChargerIntervals{}
	}

	reporting := make([]models.Interval, 0, len(reports))
	var up []models.Interval
	for _, r := range reports {
		iv := models.Interval{Start: r.Start, End: r.End}
		reporting = append(reporting, iv)
		if r.Up {
			up = append(up, iv)
		}
	}

	return ChargerIntervals{
		Reporting: Merge(reporting),
		Up:        Merge(up),
	}
}

// Union merges several already-merged interval sets into one. Sets from
// different chargers may still overlap each other, so a full second merge
// pass is required.
func Union(sets ...IntervalSet) IntervalSet {
	total := 0
	for _, s := range sets {
		total += len(s)
	}
	if total == 0 {
		return nil
	}
	combined := make([]models.Interval, 0, total)
	for _, s := range sets {
		combined = append(combined, s...)
	}
	return Merge(combined)
}

// TotalDuration sums the lengths of a merged interval set.
func TotalDuration(set IntervalSet) uint64 {
	var total uint64
	for _, iv := range set {
		total += iv.Duration()
	}
	return total
}

// Percent computes floor(100 * up / reporting) without overflowing even when
// up approaches the top of the uint64 range. Zero reporting time yields 0.
func Percent(up, reporting uint64) int {
	if reporting == 0 {
		return 0
	}
	hi, lo := bits.Mul64(up, 100)
	// up <= reporting, so the 128-bit product 100*up is always below
	// reporting<<64 and Div64 cannot trap.
	q, _ := bits.Div64(hi, lo, reporting)
	return int(q)
}
