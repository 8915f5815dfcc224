package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/penwyp/go-presence-timeline/internal/presentation/layout"
	"github.com/penwyp/go-presence-timeline/internal/util"
)

// DisplayConfig controls terminal output
type DisplayConfig struct {
	Color bool
	Width int // 0 means detect from the terminal
	Out   io.Writer
}

// ScreenState is everything one frame shows
type ScreenState struct {
	View          layout.View
	LayoutStyle   int
	ShowHelp      bool
	StatusMessage string
}

// TerminalDisplay draws frames on an ANSI terminal
type TerminalDisplay struct {
	config            *DisplayConfig
	out               io.Writer
	inAlternateScreen bool
	isFirstRender     bool
	lastLayoutStyle   int
	lastHelp          bool
}

func NewTerminalDisplay(config *DisplayConfig) *TerminalDisplay {
	if config == nil {
		config = &DisplayConfig{}
	}
	out := config.Out
	if out == nil {
		out = os.Stdout
	}
	return &TerminalDisplay{
		config:        config,
		out:           out,
		isFirstRender: true,
	}
}

// EnterAlternateScreen switches to the alternate screen buffer
func (td *TerminalDisplay) EnterAlternateScreen() {
	if td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.EnterAltScreen, util.ClearScreen, util.ClearScrollback, util.HideCursor, util.MoveCursorHome)
	td.inAlternateScreen = true
	td.isFirstRender = true
}

// ExitAlternateScreen returns to the normal screen buffer
func (td *TerminalDisplay) ExitAlternateScreen() {
	if !td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.ClearScreen, util.MoveCursorHome, util.ShowCursor, util.ExitAltScreen)
	td.inAlternateScreen = false
}

// ClearScreen clears the alternate screen buffer
func (td *TerminalDisplay) ClearScreen() {
	if td.inAlternateScreen {
		fmt.Fprint(td.out, util.ClearScreen, util.MoveCursorHome)
	}
}

func (td *TerminalDisplay) width() int {
	if td.config.Width > 0 {
		return layout.ClampWidth(td.config.Width)
	}
	return (&layout.Sizer{}).TerminalWidth()
}

// Render draws a frame, redrawing in place unless the layout changed
func (td *TerminalDisplay) Render(state ScreenState) {
	if td.isFirstRender || td.lastLayoutStyle != state.LayoutStyle || td.lastHelp != state.ShowHelp {
		td.ClearScreen()
		td.isFirstRender = false
		td.lastLayoutStyle = state.LayoutStyle
		td.lastHelp = state.ShowHelp
	}

	var sb strings.Builder
	sb.WriteString(util.MoveCursorHome)
	for _, line := range td.Compose(state, td.width()) {
		sb.WriteString(util.ClearLine)
		sb.WriteString(line)
		sb.WriteString("\r\n")
	}
	sb.WriteString(util.ClearToEnd)
	fmt.Fprint(td.out, sb.String())
}

// Compose builds the frame lines without writing them
func (td *TerminalDisplay) Compose(state ScreenState, width int) []string {
	if state.ShowHelp {
		return helpLines(width)
	}

	view := state.View
	view.Color = td.config.Color
	strategy := layout.GetLayoutStrategy(state.LayoutStyle)

	lines := []string{headerLine(view, width, td.config.Color), strings.Repeat("═", width)}
	if len(view.Devices) == 0 {
		lines = append(lines, "", util.CenterText("No devices configured", width),
			util.CenterText("add devices to config.yaml or pass --device", width))
	} else {
		lines = append(lines, strategy.Render(view, width)...)
	}

	lines = append(lines, strings.Repeat("─", width))
	if msg := statusLine(view, state.StatusMessage); msg != "" {
		lines = append(lines, util.Colorize(util.Truncate(msg, width), util.ColorYellow, td.config.Color))
	}
	lines = append(lines, util.Truncate("q quit  [ ] day  t today  l 24h  r refresh  j/k device  d detail  v layout  ? help", width))
	return lines
}

func headerLine(view layout.View, width int, color bool) string {
	left := "PRESENCE TIMELINE"
	right := fmt.Sprintf("window %s", view.Window)
	if !view.Now.IsZero() {
		right += "  " + view.Now.Format("15:04:05")
	}
	gap := width - util.GetDisplayWidth(left) - util.GetDisplayWidth(right)
	if gap < 1 {
		return util.Truncate(left+" "+right, width)
	}
	if color {
		left = util.FormatHeaderTitle(left)
	}
	return left + strings.Repeat(" ", gap) + right
}

func statusLine(view layout.View, message string) string {
	if message != "" {
		return message
	}
	if view.Selected < 0 || view.Selected >= len(view.Devices) {
		return ""
	}
	dv := view.Devices[view.Selected]
	switch {
	case dv.Err != nil:
		return fmt.Sprintf("%s: %v (showing last good data)", dv.Device.Label(), dv.Err)
	case dv.Loading:
		return fmt.Sprintf("%s: refreshing…", dv.Device.Label())
	case !dv.RefreshedAt.IsZero():
		return fmt.Sprintf("%s: updated %s ago", dv.Device.Label(),
			util.FormatDuration(view.Now.Sub(dv.RefreshedAt).Truncate(time.Minute)))
	}
	return ""
}

func helpLines(width int) []string {
	return []string{
		"Presence Timeline - Help",
		strings.Repeat("═", width),
		"",
		"Keyboard Shortcuts:",
		"",
		"  q/Esc/Ctrl+C  Quit",
		"  [ / ←         Previous day",
		"  ] / →         Next day",
		"  t             Today",
		"  l             Rolling last 24 hours",
		"  r             Refresh now",
		"  j/k ↓/↑       Select device",
		"  d             Toggle interval details",
		"  v             Switch layout (Full / Compact)",
		"  ?             Toggle this help",
		"",
		"Bar legend:",
		"  █ online   ░ offline   · no report",
		"",
		strings.Repeat("═", width),
		"Press '?' to return...",
	}
}
