package refresh

import (
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/penwyp/go-presence-timeline/internal/core/constants"
	"github.com/penwyp/go-presence-timeline/internal/core/timeline"
	"github.com/penwyp/go-presence-timeline/internal/data/source"
	"github.com/penwyp/go-presence-timeline/internal/metrics"
	"github.com/penwyp/go-presence-timeline/internal/util"
)

// Target is the device and window a cycle fetches
type Target struct {
	DeviceID string
	Window   timeline.TargetWindow
}

// Config configures a Driver
type Config struct {
	Source        source.Source
	Reconstructor *timeline.Reconstructor
	Clock         clockwork.Clock
	Interval      time.Duration
	Target        Target
	Holder        *StateHolder
	Metrics       *metrics.Metrics
	Logger        util.LoggerInterface
}

// Validate checks required fields and fills defaults
func (cfg *Config) Validate() error {
	if cfg.Source == nil {
		return errors.New("source is required")
	}
	if cfg.Target.DeviceID == "" {
		return errors.New("target device is required")
	}
	if cfg.Interval < 0 {
		return errors.New("refresh interval must not be negative")
	}
	if cfg.Interval == 0 {
		cfg.Interval = constants.DefaultRefreshInterval
	}
	if cfg.Reconstructor == nil {
		cfg.Reconstructor = timeline.NewReconstructor(util.GetTimeProvider().Location())
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Holder == nil {
		cfg.Holder = NewStateHolder()
	}
	if cfg.Logger == nil {
		if l := util.GetLogger(); l != nil {
			cfg.Logger = l
		} else {
			cfg.Logger = util.NewLoggerWithOutputs(util.LevelError)
		}
	}
	return nil
}
