package formatter

import (
	"fmt"
	"io"

	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/util"
)

// SummaryFormatter prints totals across all devices.
type SummaryFormatter struct{}

func NewSummaryFormatter() *SummaryFormatter {
	return &SummaryFormatter{}
}

func (f *SummaryFormatter) Format(w io.Writer, rows []TimelineRow) error {
	var (
		withData    int
		onlineNow   int
		transitions int
		events      int
		onlineSum   float64
		best        *TimelineRow
	)
	for i := range rows {
		row := &rows[i]
		events += row.EventCount
		if len(row.Intervals) == 0 {
			continue
		}
		withData++
		transitions += row.Summary.Transitions
		onlineSum += row.Summary.OnlinePercent
		if row.Summary.LastStatus == model.StatusOn {
			onlineNow++
		}
		if best == nil || row.Summary.OnlinePercent > best.Summary.OnlinePercent {
			best = row
		}
	}

	avg := 0.0
	if withData > 0 {
		avg = onlineSum / float64(withData)
	}

	lines := []string{
		"Presence Summary",
		"================",
		fmt.Sprintf("Devices:          %d (%d with data)", len(rows), withData),
		fmt.Sprintf("Online at end:    %d", onlineNow),
		fmt.Sprintf("Average online:   %s", util.FormatPercent(avg)),
		fmt.Sprintf("Transitions:      %d", transitions),
		fmt.Sprintf("Events:           %d", events),
	}
	if best != nil {
		lines = append(lines, fmt.Sprintf("Most online:      %s (%s)",
			best.Device.Label(), util.FormatPercent(best.Summary.OnlinePercent)))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
