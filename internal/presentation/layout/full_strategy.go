package layout

import (
	"fmt"

	"github.com/penwyp/go-presence-timeline/internal/presentation/formatter"
)

// FullLayoutStrategy draws a label line and a bar line per device
type FullLayoutStrategy struct {
	BaseStrategy
}

func (s *FullLayoutStrategy) GetName() string {
	return "Full"
}

func (s *FullLayoutStrategy) Render(view View, width int) []string {
	sizer := s.GetSizer()
	barWidth := formatter.BarWidth(width)
	statusWidth := 16
	labelWidth := width - statusWidth - 1

	var lines []string
	start, end := s.visibleRange(view)
	for i := start; i < end; i++ {
		dv := view.Devices[i]
		ip := ""
		if dv.Device.IP != "" {
			ip = "  " + dv.Device.IP
		}
		label := s.rowLabel(view, i, labelWidth-len(ip)) + ip
		lines = append(lines,
			label+" "+sizer.PadString(s.statusText(dv), statusWidth, false),
			"|"+s.bar(dv, barWidth, view.Color)+"|",
		)
	}
	if len(view.Devices) > 0 {
		lines = append(lines, " "+formatter.RenderAxis(barWidth))
	}
	if end-start < len(view.Devices) {
		lines = append(lines, sizer.PadString(fmt.Sprintf("rows %d-%d of %d", start+1, end, len(view.Devices)), width, false))
	}

	if view.ShowDetail {
		lines = append(lines, s.SeparatorLine(width))
		lines = append(lines, s.detailLines(view, width)...)
	}
	return lines
}
