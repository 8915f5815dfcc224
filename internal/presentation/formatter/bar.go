package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/util"
)

// Bar cell glyphs
const (
	GlyphOn      = '█'
	GlyphOff     = '░'
	GlyphUnknown = '·'
)

const minBarWidth = 12

var axisLabels = []string{"00:00", "06:00", "12:00", "18:00", "24:00"}

// BarCells maps intervals onto width cells of the 00:00-24:00 axis.
// A cell takes the status covering most of it; cells less than half
// covered are reported as "".
func BarCells(intervals []model.TimelineInterval, width int) []model.Status {
	if width <= 0 {
		return nil
	}
	cells := make([]model.Status, width)
	step := 100.0 / float64(width)

	for i := range cells {
		lo := float64(i) * step
		hi := lo + step
		var on, off float64
		for _, iv := range intervals {
			for _, span := range iv.Spans() {
				overlap := min(hi, span[1]) - max(lo, span[0])
				if overlap <= 0 {
					continue
				}
				if iv.Status == model.StatusOn {
					on += overlap
				} else {
					off += overlap
				}
			}
		}
		switch {
		case on+off < step/2:
			cells[i] = ""
		case on >= off:
			cells[i] = model.StatusOn
		default:
			cells[i] = model.StatusOff
		}
	}
	return cells
}

// RenderBar draws the intervals as a width-cell bar
func RenderBar(intervals []model.TimelineInterval, width int, color bool) string {
	var sb strings.Builder
	var run []rune
	var runStatus model.Status

	flush := func() {
		if len(run) == 0 {
			return
		}
		sb.WriteString(util.Colorize(string(run), statusColor(runStatus), color))
		run = run[:0]
	}

	for i, cell := range BarCells(intervals, width) {
		if i > 0 && cell != runStatus {
			flush()
		}
		runStatus = cell
		run = append(run, glyph(cell))
	}
	flush()
	return sb.String()
}

// RenderAxis lays the 00:00..24:00 labels under a width-cell bar.
// The end labels are placed first; inner labels that would collide are dropped.
func RenderAxis(width int) string {
	if width < len(axisLabels[0]) {
		return ""
	}
	line := []rune(strings.Repeat(" ", width))
	used := make([]bool, width)
	last := len(axisLabels) - 1

	order := append([]int{0, last}, makeRange(1, last)...)
	for _, k := range order {
		label := axisLabels[k]
		start := k*width/last - len(label)/2
		start = max(0, min(start, width-len(label)))
		if collides(used, start-1, start+len(label)+1) {
			continue
		}
		copy(line[start:], []rune(label))
		for i := start; i < start+len(label); i++ {
			used[i] = true
		}
	}
	return string(line)
}

func makeRange(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

func collides(used []bool, from, to int) bool {
	for i := max(0, from); i < min(len(used), to); i++ {
		if used[i] {
			return true
		}
	}
	return false
}

func glyph(s model.Status) rune {
	switch s {
	case model.StatusOn:
		return GlyphOn
	case model.StatusOff:
		return GlyphOff
	default:
		return GlyphUnknown
	}
}

func statusColor(s model.Status) string {
	switch s {
	case model.StatusOn:
		return util.ColorGreen
	case model.StatusOff:
		return util.ColorRed
	default:
		return util.ColorGray
	}
}

// BarFormatter prints a titled bar and axis per device
type BarFormatter struct {
	opts Options
}

func NewBarFormatter(opts Options) *BarFormatter {
	return &BarFormatter{opts: opts}
}

// BarWidth is the bar cell count for a total line width
func BarWidth(lineWidth int) int {
	w := lineWidth - 2 // frame
	if w < minBarWidth {
		w = minBarWidth
	}
	return w
}

func (f *BarFormatter) Format(w io.Writer, rows []TimelineRow) error {
	width := BarWidth(f.opts.Width)
	for i, row := range rows {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		title := fmt.Sprintf("%s  %s  online %s",
			deviceTitle(row.Device), row.Window, util.FormatPercent(row.Summary.OnlinePercent))
		lines := []string{
			util.Colorize(util.Truncate(title, width+2), util.ColorBold, f.opts.Color),
			"|" + RenderBar(row.Intervals, width, f.opts.Color) + "|",
			" " + RenderAxis(width),
		}
		if len(row.Intervals) == 0 {
			lines[1] = "|" + util.PadRight(util.CenterText("no data", width), width) + "|"
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}
