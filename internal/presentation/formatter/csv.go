package formatter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/penwyp/go-presence-timeline/internal/util"
)

type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

// Format writes one record per interval
func (f *CSVFormatter) Format(w io.Writer, rows []TimelineRow) error {
	cw := csv.NewWriter(w)

	headers := []string{
		"Device", "Name", "Window", "Status", "Start", "End",
		"Start %", "End %", "Duration", "Date", "Iface", "IP", "Known",
	}
	if err := cw.Write(headers); err != nil {
		return err
	}

	for _, row := range rows {
		for _, iv := range row.Intervals {
			record := []string{
				row.Device.ID,
				row.Device.Name,
				row.Window,
				string(iv.Status),
				util.FractionToClock(iv.StartFraction),
				util.FractionToClock(iv.EndFraction),
				fmt.Sprintf("%.4f", iv.StartFraction),
				fmt.Sprintf("%.4f", iv.EndFraction),
				util.FormatDuration(util.FractionToDuration(iv.Width())),
				iv.Timestamp,
				iv.Iface,
				iv.IP,
				iv.Known.String(),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
