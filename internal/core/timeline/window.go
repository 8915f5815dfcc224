package timeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/penwyp/go-presence-timeline/internal/core/constants"
)

// ErrInvalidWindow is returned for day identifiers that are neither empty nor YYYY-MM-DD
var ErrInvalidWindow = errors.New("invalid window")

// TargetWindow is either a calendar day or the trailing 24 hours
type TargetWindow struct {
	rolling bool
	day     time.Time // local midnight; zero for rolling windows
}

// Rolling returns the trailing 24h window
func Rolling() TargetWindow {
	return TargetWindow{rolling: true}
}

// Day returns the calendar day containing t, in t's location
func Day(t time.Time) TargetWindow {
	y, m, d := t.Date()
	return TargetWindow{day: time.Date(y, m, d, 0, 0, 0, 0, t.Location())}
}

// ParseWindow parses a day identifier: "" means rolling, otherwise YYYY-MM-DD in loc
func ParseWindow(id string, loc *time.Location) (TargetWindow, error) {
	if id == "" {
		return Rolling(), nil
	}
	midnight, err := ParseTimestamp(id+" 00:00:00", loc)
	if err != nil {
		return TargetWindow{}, fmt.Errorf("%w: %q: want YYYY-MM-DD or empty", ErrInvalidWindow, id)
	}
	return TargetWindow{day: midnight}, nil
}

// IsRolling reports whether the window is the trailing 24h window
func (w TargetWindow) IsRolling() bool {
	return w.rolling
}

// ID returns the day identifier ("" for rolling)
func (w TargetWindow) ID() string {
	if w.rolling {
		return ""
	}
	return w.day.Format(constants.DayLayout)
}

// String is the human label of the window
func (w TargetWindow) String() string {
	if w.rolling {
		return "last 24h"
	}
	return w.ID()
}

// Bounds returns the inclusive [start, end] instants of the window.
// now is only consulted for rolling windows.
func (w TargetWindow) Bounds(now time.Time) (time.Time, time.Time) {
	if w.rolling {
		return now.Add(-constants.RollingWindow), now
	}
	y, m, d := w.day.Date()
	return w.day, time.Date(y, m, d, 23, 59, 59, 0, w.day.Location())
}

// Contains reports whether t falls within the inclusive bounds
func (w TargetWindow) Contains(t, now time.Time) bool {
	start, end := w.Bounds(now)
	return !t.Before(start) && !t.After(end)
}

// Shift moves a day window by n calendar days; rolling windows are returned unchanged
func (w TargetWindow) Shift(days int) TargetWindow {
	if w.rolling {
		return w
	}
	return Day(w.day.AddDate(0, 0, days))
}
