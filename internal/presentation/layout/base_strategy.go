package layout

import (
	"fmt"
	"strings"

	"github.com/penwyp/go-presence-timeline/internal/presentation/formatter"
	"github.com/penwyp/go-presence-timeline/internal/presentation/interaction"
	"github.com/penwyp/go-presence-timeline/internal/util"
)

// BaseStrategy provides common functionality for all layout strategies
type BaseStrategy struct{}

// GetSizer returns the shared sizer instance
func (b *BaseStrategy) GetSizer() *Sizer {
	return sharedSizer
}

// SeparatorLine creates a separator line of the given width
func (b *BaseStrategy) SeparatorLine(width int) string {
	return strings.Repeat("─", width)
}

// visibleRange returns the device rows to draw around the selection
func (b *BaseStrategy) visibleRange(view View) (int, int) {
	return interaction.ScrollWindow(len(view.Devices), view.Selected, view.VisibleRows)
}

// rowLabel renders ">  1. name" for a device row
func (b *BaseStrategy) rowLabel(view View, i int, width int) string {
	marker := " "
	if i == view.Selected {
		marker = ">"
	}
	label := fmt.Sprintf("%s %2d. %s", marker, i+1, view.Devices[i].Device.Label())
	label = b.GetSizer().Fit(label, width)
	if i == view.Selected {
		return util.Colorize(label, util.ColorBold, view.Color)
	}
	return label
}

// statusText summarises a device's state in a short string
func (b *BaseStrategy) statusText(dv DeviceView) string {
	switch {
	case dv.Err != nil && !dv.HasData:
		return "error"
	case !dv.HasData && dv.Loading:
		return "loading…"
	case !dv.HasData:
		return "waiting"
	case len(dv.Intervals) == 0:
		return "no data"
	default:
		return "online " + util.FormatPercent(dv.Summary.OnlinePercent)
	}
}

// bar renders the device bar or a placeholder of the same width
func (b *BaseStrategy) bar(dv DeviceView, width int, color bool) string {
	if !dv.HasData || len(dv.Intervals) == 0 {
		return util.Colorize(strings.Repeat(string(formatter.GlyphUnknown), width), util.ColorGray, color)
	}
	return formatter.RenderBar(dv.Intervals, width, color)
}

// detailLines lists the selected device's intervals
func (b *BaseStrategy) detailLines(view View, width int) []string {
	if view.Selected < 0 || view.Selected >= len(view.Devices) {
		return nil
	}
	dv := view.Devices[view.Selected]
	lines := []string{util.Colorize("Intervals: "+dv.Device.Label(), util.ColorCyan, view.Color)}
	if dv.Device.IP != "" {
		lines[0] += " (" + dv.Device.IP + ")"
	}
	if len(dv.Intervals) == 0 {
		return append(lines, "  no data")
	}
	for _, iv := range dv.Intervals {
		lines = append(lines, "  "+util.Truncate(formatter.IntervalLine(iv, false), width-2))
	}
	return lines
}
