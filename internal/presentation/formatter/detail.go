package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/util"
)

// DetailText is the multi-line hover text of an interval
func DetailText(iv model.TimelineInterval) string {
	return fmt.Sprintf("Date: %s\nIface: %s\nIP: %s\nKnown: %s", iv.Timestamp, iv.Iface, iv.IP, iv.Known)
}

// IntervalLine renders one interval as a single line
func IntervalLine(iv model.TimelineInterval, color bool) string {
	status := util.Colorize(fmt.Sprintf("%-3s", iv.Status), statusColor(iv.Status), color)
	return fmt.Sprintf("%s-%s %s %8s  %s",
		util.FractionToClock(iv.StartFraction),
		util.FractionToClock(iv.EndFraction),
		status,
		util.FormatDuration(util.FractionToDuration(iv.Width())),
		strings.ReplaceAll(DetailText(iv), "\n", "  "))
}

// IntervalFormatter lists every interval of every device
type IntervalFormatter struct {
	opts Options
}

func NewIntervalFormatter(opts Options) *IntervalFormatter {
	return &IntervalFormatter{opts: opts}
}

func (f *IntervalFormatter) Format(w io.Writer, rows []TimelineRow) error {
	for i, row := range rows {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s  %s\n", deviceTitle(row.Device), row.Window); err != nil {
			return err
		}
		if len(row.Intervals) == 0 {
			if _, err := fmt.Fprintln(w, "  no data"); err != nil {
				return err
			}
			continue
		}
		for _, iv := range row.Intervals {
			if _, err := fmt.Fprintln(w, "  "+IntervalLine(iv, f.opts.Color)); err != nil {
				return err
			}
		}
	}
	return nil
}
