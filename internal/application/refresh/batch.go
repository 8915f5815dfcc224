package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/core/timeline"
	"github.com/penwyp/go-presence-timeline/internal/data/source"
	"golang.org/x/sync/errgroup"
)

const defaultBatchConcurrency = 4

// DeviceTimeline is the one-shot result for a device
type DeviceTimeline struct {
	Device     model.Device
	Intervals  []model.TimelineInterval
	EventCount int
	Summary    timeline.Summary
}

// BatchRequest describes a one-shot multi-device load
type BatchRequest struct {
	Source        source.Source
	Reconstructor *timeline.Reconstructor
	Devices       []model.Device
	Window        timeline.TargetWindow
	Now           time.Time
	Concurrency   int
}

// LoadAll fetches and reconstructs every device with bounded concurrency.
// Results keep the order of req.Devices; the first error cancels the rest.
func LoadAll(ctx context.Context, req BatchRequest) ([]DeviceTimeline, error) {
	limit := req.Concurrency
	if limit <= 0 {
		limit = defaultBatchConcurrency
	}

	results := make([]DeviceTimeline, len(req.Devices))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, dev := range req.Devices {
		i, dev := i, dev
		g.Go(func() error {
			events, err := req.Source.FetchEvents(ctx, dev.ID, req.Window.ID())
			if err != nil {
				return fmt.Errorf("fetch events for %s: %w", dev.Label(), err)
			}
			intervals := req.Reconstructor.Reconstruct(events, req.Window, req.Now)
			results[i] = DeviceTimeline{
				Device:     dev,
				Intervals:  intervals,
				EventCount: len(events),
				Summary:    timeline.Summarize(intervals),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
