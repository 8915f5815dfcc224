// Package formatter renders reconstructed timelines as text bars, tables, JSON or CSV.
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/core/timeline"
)

// TimelineRow is one device's reconstructed window
type TimelineRow struct {
	Device     model.Device             `json:"device"`
	Window     string                   `json:"window"`
	EventCount int                      `json:"event_count"`
	Summary    timeline.Summary         `json:"summary"`
	Intervals  []model.TimelineInterval `json:"intervals"`
}

// Formatter writes rows to w
type Formatter interface {
	Format(w io.Writer, rows []TimelineRow) error
}

// Options tunes text output
type Options struct {
	Width int  // total line width for bar output
	Color bool // emit ANSI colors
}

// Supported format names
const (
	FormatBar       = "bar"
	FormatTable     = "table"
	FormatIntervals = "intervals"
	FormatJSON      = "json"
	FormatCSV       = "csv"
	FormatSummary   = "summary"
)

// New returns the formatter for name
func New(name string, opts Options) (Formatter, error) {
	switch strings.ToLower(name) {
	case FormatBar, "":
		return NewBarFormatter(opts), nil
	case FormatTable:
		return NewTableFormatter(), nil
	case FormatIntervals:
		return NewIntervalFormatter(opts), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatCSV:
		return NewCSVFormatter(), nil
	case FormatSummary:
		return NewSummaryFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (bar, table, intervals, json, csv, summary)", name)
	}
}

func deviceTitle(d model.Device) string {
	if d.IP != "" {
		return fmt.Sprintf("%s (%s)", d.Label(), d.IP)
	}
	return d.Label()
}
