package timeline

import (
	"sort"
	"time"

	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/util"
)

// Reconstructor turns raw presence events into status intervals.
// It holds no state besides the wall-clock zone and is safe for concurrent use.
type Reconstructor struct {
	location *time.Location
}

// NewReconstructor creates a reconstructor parsing timestamps in loc (nil means Local)
func NewReconstructor(loc *time.Location) *Reconstructor {
	return &Reconstructor{location: locOrLocal(loc)}
}

// Location returns the zone timestamps are interpreted in
func (r *Reconstructor) Location() *time.Location {
	return r.location
}

// timedEvent pairs an event with its parsed instant
type timedEvent struct {
	at    time.Time
	event model.PresenceEvent
}

// Reconstruct compresses events into the ordered, non-overlapping, status-alternating
// intervals of window. now anchors rolling windows and is ignored for day windows.
func (r *Reconstructor) Reconstruct(events []model.PresenceEvent, window TargetWindow, now time.Time) []model.TimelineInterval {
	intervals := make([]model.TimelineInterval, 0)
	if len(events) == 0 {
		return intervals
	}

	timed := r.inWindow(events, window, now)
	if len(timed) == 0 {
		return intervals
	}

	sort.SliceStable(timed, func(i, j int) bool {
		return timed[i].at.Before(timed[j].at)
	})
	timed = collapseTies(timed)

	first := timed[0]
	current := first.event.Status()
	segmentStart := first.at

	for _, te := range timed[1:] {
		status := te.event.Status()
		if status == current {
			continue
		}
		intervals = append(intervals, newInterval(segmentStart, DayFraction(te.at), current, te.event))
		current = status
		segmentStart = te.at
	}

	end := 100.0
	if window.IsRolling() {
		end = DayFraction(now.In(r.location))
	}
	last := timed[len(timed)-1]
	intervals = append(intervals, newInterval(segmentStart, end, current, last.event))

	return intervals
}

// inWindow parses and keeps the events inside the window's inclusive bounds
func (r *Reconstructor) inWindow(events []model.PresenceEvent, window TargetWindow, now time.Time) []timedEvent {
	start, end := window.Bounds(now)
	timed := make([]timedEvent, 0, len(events))
	malformed := 0

	for _, ev := range events {
		at, err := ParseTimestamp(ev.Timestamp, r.location)
		if err != nil {
			malformed++
			continue
		}
		if at.Before(start) || at.After(end) {
			continue
		}
		timed = append(timed, timedEvent{at: at, event: ev})
	}

	if malformed > 0 {
		util.LogDebugf("Dropped %d events with malformed timestamps", malformed)
	}
	return timed
}

// collapseTies keeps only the first arrival among events sharing an instant.
// Input must already be stably sorted.
func collapseTies(sorted []timedEvent) []timedEvent {
	out := sorted[:1]
	for _, te := range sorted[1:] {
		if te.at.Equal(out[len(out)-1].at) {
			continue
		}
		out = append(out, te)
	}
	return out
}

func newInterval(since time.Time, end float64, status model.Status, detail model.PresenceEvent) model.TimelineInterval {
	return model.TimelineInterval{
		StartFraction: DayFraction(since),
		EndFraction:   end,
		Status:        status,
		Timestamp:     detail.Timestamp,
		Iface:         detail.Iface,
		IP:            detail.IP,
		Known:         detail.Known,
		Since:         since,
	}
}
