package constants

import "time"

const (
	// SecondsPerDay is the divisor for day-fraction positioning
	SecondsPerDay = 24 * 3600

	// RollingWindow is the span of the trailing window
	RollingWindow = 24 * time.Hour

	// DefaultRefreshInterval is the periodic refetch cadence
	DefaultRefreshInterval = 60 * time.Second

	// DefaultVisibleRows is used when the preference is absent or non-positive
	DefaultVisibleRows = 10

	// TimestampLayout is the external wall-clock format of presence events
	TimestampLayout = "2006-01-02 15:04:05"

	// DayLayout is the day identifier format
	DayLayout = "2006-01-02"
)
