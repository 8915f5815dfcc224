package model

import "time"

// TimelineInterval is one maximal run of a single status within a target window.
// Fractions are percentages of a 24h day elapsed since local midnight.
type TimelineInterval struct {
	StartFraction float64 `json:"start"`
	EndFraction   float64 `json:"end"`
	Status        Status  `json:"status"`

	// Detail fields, for display only
	Timestamp string     `json:"date"`
	Iface     string     `json:"iface"`
	IP        string     `json:"ip"`
	Known     KnownState `json:"known"`
	Since     time.Time  `json:"since"`
}

// Wraps reports whether the run started on the previous day, which only
// happens in rolling windows
func (i TimelineInterval) Wraps() bool {
	return i.StartFraction > i.EndFraction
}

// Width returns the interval span in day-fraction units
func (i TimelineInterval) Width() float64 {
	if i.Wraps() {
		return 100 - i.StartFraction + i.EndFraction
	}
	return i.EndFraction - i.StartFraction
}

// Spans returns the [start, end] ranges the interval covers on the 00:00-24:00
// axis; a wrapping run is split at midnight
func (i TimelineInterval) Spans() [][2]float64 {
	if i.Wraps() {
		return [][2]float64{{i.StartFraction, 100}, {0, i.EndFraction}}
	}
	return [][2]float64{{i.StartFraction, i.EndFraction}}
}
