package watch

import (
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/penwyp/go-presence-timeline/internal/core/constants"
	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/core/timeline"
)

// WatchConfig contains configuration for the watch command
type WatchConfig struct {
	Devices []model.Device
	Window  timeline.TargetWindow

	// Refresh settings
	RefreshInterval time.Duration
	UIRefreshRate   time.Duration

	// Display settings
	VisibleRows int
	Color       bool
	Width       int
	LayoutStyle int

	// Directory to watch for history file changes; empty disables watching
	WatchDir string

	Location *time.Location
	Clock    clockwork.Clock
}

// Validate checks the configuration and fills defaults
func (c *WatchConfig) Validate() error {
	if len(c.Devices) == 0 {
		return errors.New("at least one device is required")
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = constants.DefaultRefreshInterval
	}
	if c.UIRefreshRate <= 0 {
		c.UIRefreshRate = time.Second
	}
	if c.VisibleRows <= 0 {
		c.VisibleRows = constants.DefaultVisibleRows
	}
	if c.Location == nil {
		c.Location = time.Local
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return nil
}
