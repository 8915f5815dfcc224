package layout

import (
	"github.com/penwyp/go-presence-timeline/internal/presentation/formatter"
)

// CompactLayoutStrategy draws one line per device: label, bar, status
type CompactLayoutStrategy struct {
	BaseStrategy
}

func (s *CompactLayoutStrategy) GetName() string {
	return "Compact"
}

func (s *CompactLayoutStrategy) Render(view View, width int) []string {
	const labelWidth = 18
	const statusWidth = 14
	barWidth := width - labelWidth - statusWidth - 4
	if barWidth < 12 {
		barWidth = 12
	}

	var lines []string
	start, end := s.visibleRange(view)
	for i := start; i < end; i++ {
		dv := view.Devices[i]
		lines = append(lines, s.rowLabel(view, i, labelWidth)+" |"+
			s.bar(dv, barWidth, view.Color)+"| "+
			s.GetSizer().PadString(s.statusText(dv), statusWidth, false))
	}
	if len(view.Devices) > 0 {
		lines = append(lines, s.GetSizer().PadString("", labelWidth+2, true)+formatter.RenderAxis(barWidth))
	}

	if view.ShowDetail {
		lines = append(lines, s.SeparatorLine(width))
		lines = append(lines, s.detailLines(view, width)...)
	}
	return lines
}
