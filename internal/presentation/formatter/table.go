package formatter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/penwyp/go-presence-timeline/internal/util"
)

type TableFormatter struct {
	headers []string
}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		headers: []string{
			"#", "Device", "IP", "Window", "Online", "Offline", "Changes", "Last", "Events",
		},
	}
}

// numeric columns are right-aligned
var tableRightAligned = map[int]bool{0: true, 4: true, 5: true, 6: true, 8: true}

func (f *TableFormatter) Format(w io.Writer, rows []TimelineRow) error {
	data := make([][]string, 0, len(rows))
	for i, row := range rows {
		last := string(row.Summary.LastStatus)
		if last == "" {
			last = "-"
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			row.Device.Label(),
			row.Device.IP,
			row.Window,
			util.FormatPercent(row.Summary.OnlinePercent),
			util.FormatPercent(row.Summary.OfflinePercent),
			strconv.Itoa(row.Summary.Transitions),
			last,
			strconv.Itoa(row.EventCount),
		})
	}

	widths := f.calculateColumnWidths(data)

	var sb strings.Builder
	f.writeBorder(&sb, widths, "top")
	f.writeRow(&sb, f.headers, widths)
	f.writeBorder(&sb, widths, "middle")
	for _, values := range data {
		f.writeRow(&sb, values, widths)
	}
	f.writeBorder(&sb, widths, "bottom")

	_, err := io.WriteString(w, sb.String())
	return err
}

// calculateColumnWidths sizes each column to its widest cell
func (f *TableFormatter) calculateColumnWidths(data [][]string) []int {
	widths := make([]int, len(f.headers))
	for i, header := range f.headers {
		widths[i] = util.GetDisplayWidth(header)
	}
	for _, values := range data {
		for i, value := range values {
			if w := util.GetDisplayWidth(value); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// writeBorder writes table borders (top, middle, bottom)
func (f *TableFormatter) writeBorder(sb *strings.Builder, widths []int, borderType string) {
	var left, middle, right string
	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	case "bottom":
		left, middle, right = "└", "┴", "┘"
	}

	sb.WriteString(left)
	for i, width := range widths {
		sb.WriteString(strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			sb.WriteString(middle)
		}
	}
	sb.WriteString(right + "\n")
}

func (f *TableFormatter) writeRow(sb *strings.Builder, values []string, widths []int) {
	sb.WriteString("│")
	for i, value := range values {
		pad := widths[i] - util.GetDisplayWidth(value)
		if tableRightAligned[i] {
			fmt.Fprintf(sb, " %s%s │", strings.Repeat(" ", pad), value)
		} else {
			fmt.Fprintf(sb, " %s%s │", value, strings.Repeat(" ", pad))
		}
	}
	sb.WriteString("\n")
}
