package timeline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/penwyp/go-presence-timeline/internal/core/constants"
)

// ErrMalformedTimestamp is returned for timestamps not in YYYY-MM-DD HH:MM:SS form
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// ParseTimestamp converts a "YYYY-MM-DD HH:MM:SS" wall-clock string into an instant in loc
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	parts := strings.Split(raw, " ")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("%w: %q: want date and time separated by one space", ErrMalformedTimestamp, raw)
	}

	date, err := splitInts(parts[0], "-")
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: date: %v", ErrMalformedTimestamp, raw, err)
	}
	clock, err := splitInts(parts[1], ":")
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: time: %v", ErrMalformedTimestamp, raw, err)
	}

	year, month, day := date[0], date[1], date[2]
	hour, minute, second := clock[0], clock[1], clock[2]
	if month < 1 || month > 12 || day < 1 || day > daysIn(year, month) ||
		hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, fmt.Errorf("%w: %q: component out of range", ErrMalformedTimestamp, raw)
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, locOrLocal(loc)), nil
}

// DayFraction positions an instant within its day as a percentage in [0, 100).
// The date is discarded; only the wall-clock time of day matters.
func DayFraction(t time.Time) float64 {
	seconds := t.Hour()*3600 + t.Minute()*60 + t.Second()
	return float64(seconds) / constants.SecondsPerDay * 100
}

// splitInts splits s into exactly three unsigned decimal integers
func splitInts(s, sep string) ([3]int, error) {
	var out [3]int
	fields := strings.Split(s, sep)
	if len(fields) != 3 {
		return out, fmt.Errorf("want 3 fields, got %d", len(fields))
	}
	for i, f := range fields {
		if f == "" || strings.TrimLeft(f, "0123456789") != "" {
			return out, fmt.Errorf("non-digit component %q", f)
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return out, err
		}
		out[i] = n
	}
	return out, nil
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func locOrLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
