package layout

import (
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/penwyp/go-presence-timeline/internal/util"
	"golang.org/x/term"
)

const (
	fallbackWidth = 80
	minWidth      = 40
	maxWidth      = 160
)

// Package-level singleton Sizer instance
var sharedSizer = &Sizer{}

type Sizer struct{}

// PadString pads a string to a display width, handling wide runes
func (Sizer) PadString(s string, width int, leftAlign bool) string {
	actual := runewidth.StringWidth(s)
	if actual >= width {
		return s
	}
	padding := strings.Repeat(" ", width-actual)
	if leftAlign {
		return s + padding
	}
	return padding + s
}

// Fit truncates or pads s to exactly width cells
func (s Sizer) Fit(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) > width {
		return runewidth.Truncate(text, width, "…")
	}
	return s.PadString(text, width, true)
}

// TerminalWidth returns the stdout width clamped to a usable range
func (Sizer) TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = fallbackWidth
	}
	width = ClampWidth(width)
	util.LogDebugf("TerminalWidth %d", width)
	return width
}

// ClampWidth keeps a width within the supported layout range
func ClampWidth(width int) int {
	if width < minWidth {
		return minWidth
	}
	if width > maxWidth {
		return maxWidth
	}
	return width
}
