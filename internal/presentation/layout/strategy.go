// Package layout arranges device timelines into terminal screens.
package layout

import (
	"time"

	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/core/timeline"
)

// DeviceView is what a screen knows about one device
type DeviceView struct {
	Device      model.Device
	Intervals   []model.TimelineInterval
	Summary     timeline.Summary
	HasData     bool
	Loading     bool
	Err         error
	RefreshedAt time.Time
}

// View is the full screen model
type View struct {
	Window      string
	Now         time.Time
	Devices     []DeviceView
	Selected    int
	VisibleRows int
	ShowDetail  bool
	Color       bool
}

// LayoutStrategy renders a View into screen lines of the given width
type LayoutStrategy interface {
	Render(view View, width int) []string
	GetName() string
}

const (
	StyleFull = iota
	StyleCompact
	styleCount
)

// NextStyle cycles through the available styles
func NextStyle(style int) int {
	return (style + 1) % styleCount
}

// GetLayoutStrategy returns the strategy for style, defaulting to full
func GetLayoutStrategy(style int) LayoutStrategy {
	strategies := map[int]LayoutStrategy{
		StyleFull:    &FullLayoutStrategy{},
		StyleCompact: &CompactLayoutStrategy{},
	}
	if strategy, ok := strategies[style]; ok {
		return strategy
	}
	return &FullLayoutStrategy{}
}
