// Package refresh runs the periodic fetch, reconstruct and publish cycle.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/penwyp/go-presence-timeline/internal/core/timeline"
	"github.com/penwyp/go-presence-timeline/internal/metrics"
	"github.com/penwyp/go-presence-timeline/internal/util"
)

// ErrAlreadyStarted is returned by a second Start
var ErrAlreadyStarted = errors.New("driver already started")

// Driver owns one device's refresh loop. Cycles never overlap.
type Driver struct {
	cfg Config
	log util.LoggerInterface

	mu      sync.Mutex
	target  Target
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	trigger   chan struct{}
	refreshMu sync.Mutex
}

// NewDriver validates cfg and builds an idle driver
func NewDriver(cfg Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid refresh config: %w", err)
	}
	return &Driver{
		cfg:     cfg,
		log:     cfg.Logger.With(util.F("device", cfg.Target.DeviceID)),
		target:  cfg.Target,
		trigger: make(chan struct{}, 1),
	}, nil
}

// Holder returns the state holder snapshots are published to
func (d *Driver) Holder() *StateHolder {
	return d.cfg.Holder
}

// Target returns the current target
func (d *Driver) Target() Target {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.target
}

// SetTarget switches device or window and requests an immediate cycle
func (d *Driver) SetTarget(t Target) {
	d.mu.Lock()
	d.target = t
	d.mu.Unlock()
	d.Trigger()
}

// SetWindow keeps the device and switches the window
func (d *Driver) SetWindow(w timeline.TargetWindow) {
	d.mu.Lock()
	d.target.Window = w
	d.mu.Unlock()
	d.Trigger()
}

// Trigger requests a cycle without blocking; pending requests coalesce
func (d *Driver) Trigger() {
	select {
	case d.trigger <- struct{}{}:
	default:
	}
}

// Start runs one cycle immediately, then one per interval and per trigger
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return ErrAlreadyStarted
	}
	d.started = true

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	go d.loop(ctx, d.done)
	return nil
}

func (d *Driver) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	d.log.Info("Starting refresh loop", util.F("interval", d.cfg.Interval.String()))

	if err := d.RefreshOnce(ctx); err != nil && errors.Is(err, context.Canceled) {
		return
	}

	ticker := d.cfg.Clock.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.log.Debug("Refresh loop stopped")
			return
		case <-ticker.Chan():
		case <-d.trigger:
		}
		if err := d.RefreshOnce(ctx); err != nil && errors.Is(err, context.Canceled) {
			return
		}
	}
}

// Stop cancels the loop and waits for it; safe to call more than once
func (d *Driver) Stop() {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// RefreshOnce runs one synchronous cycle for the current target.
// Fetch errors are recorded on the holder and returned; the snapshot is kept.
func (d *Driver) RefreshOnce(ctx context.Context) error {
	d.refreshMu.Lock()
	defer d.refreshMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	target := d.Target()
	device := target.DeviceID
	start := d.cfg.Clock.Now()
	d.cfg.Holder.SetLoading(true)

	events, err := d.cfg.Source.FetchEvents(ctx, device, target.Window.ID())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			d.cfg.Holder.SetLoading(false)
			d.cfg.Metrics.ObserveRefresh(device, metrics.ResultCancelled, d.cfg.Clock.Since(start))
			return ctxErr
		}
		d.log.Error("Fetch failed", util.F("window", target.Window.String()), util.F("error", err.Error()))
		d.cfg.Metrics.ObserveRefresh(device, metrics.ResultError, d.cfg.Clock.Since(start))
		d.cfg.Holder.SetError(err)
		return fmt.Errorf("fetch events for %s: %w", device, err)
	}

	if err := ctx.Err(); err != nil {
		d.cfg.Holder.SetLoading(false)
		return err
	}

	now := d.cfg.Clock.Now()
	intervals := d.cfg.Reconstructor.Reconstruct(events, target.Window, now)

	if err := ctx.Err(); err != nil {
		d.cfg.Holder.SetLoading(false)
		return err
	}

	d.cfg.Holder.Publish(Snapshot{
		Target:      target,
		Intervals:   intervals,
		EventCount:  len(events),
		RefreshedAt: now,
	})
	d.cfg.Metrics.ObserveRefresh(device, metrics.ResultOK, d.cfg.Clock.Since(start))
	d.cfg.Metrics.ObservePublish(device, len(events), len(intervals), now)
	d.log.Debug("Published timeline",
		util.F("window", target.Window.String()),
		util.F("events", len(events)),
		util.F("intervals", len(intervals)))
	return nil
}
