package util

import (
	"fmt"
	"time"
)

// FormatPercent renders a day-fraction percentage with two decimals
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// FormatDuration renders a duration as "Xh Ym" or "Ym"
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FractionToClock converts a day fraction in [0,100] to an HH:MM label
func FractionToClock(fraction float64) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 100 {
		fraction = 100
	}
	seconds := int(fraction/100*86400 + 0.5)
	return fmt.Sprintf("%02d:%02d", seconds/3600, (seconds%3600)/60)
}

// FractionToDuration converts a span of day fraction to wall-clock duration
func FractionToDuration(span float64) time.Duration {
	return time.Duration(span / 100 * float64(24*time.Hour))
}
