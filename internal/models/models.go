package models

// Report is one availability observation for a charger over the half-open
// window [Start, End) in nanoseconds. Start <= End is guaranteed by the
// input validator before a report reaches the engine.
type Report struct {
	ChargerID uint32
	Start     uint64
	End       uint64
	Up        bool
}

// Interval is a half-open time window [Start, End).
type Interval struct {
	Start uint64
	End   uint64
}

// Duration returns End - Start.
func (iv Interval) Duration() uint64 {
	return iv.End - iv.Start
}

// StationUptime is the computed availability percentage for one station.
type StationUptime struct {
	StationID uint32 `json:"station_id"`
	Percent   int    `json:"percent"`
}
