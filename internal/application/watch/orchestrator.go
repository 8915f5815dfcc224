// Package watch runs the live multi-device timeline view.
package watch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/penwyp/go-presence-timeline/internal/application/refresh"
	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/core/timeline"
	"github.com/penwyp/go-presence-timeline/internal/data/source"
	"github.com/penwyp/go-presence-timeline/internal/metrics"
	"github.com/penwyp/go-presence-timeline/internal/presentation/display"
	"github.com/penwyp/go-presence-timeline/internal/presentation/interaction"
	"github.com/penwyp/go-presence-timeline/internal/presentation/layout"
	"github.com/penwyp/go-presence-timeline/internal/util"
)

// Orchestrator coordinates drivers, display and keyboard for the watch command
type Orchestrator struct {
	config  *WatchConfig
	devices []model.Device

	// Core components
	source  source.Source
	drivers []*refresh.Driver
	state   *StateManager
	redraw  chan struct{}

	// UI components
	display  *display.TerminalDisplay
	keyboard *interaction.KeyboardReader

	// Monitoring
	watcher *source.Watcher
}

// NewOrchestrator builds one refresh driver per visible device
func NewOrchestrator(config *WatchConfig, src source.Source, m *metrics.Metrics) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	devices := interaction.LimitDevices(config.Devices, config.VisibleRows)
	recon := timeline.NewReconstructor(config.Location)

	drivers := make([]*refresh.Driver, 0, len(devices))
	for _, dev := range devices {
		d, err := refresh.NewDriver(refresh.Config{
			Source:        src,
			Reconstructor: recon,
			Clock:         config.Clock,
			Interval:      config.RefreshInterval,
			Target:        refresh.Target{DeviceID: dev.ID, Window: config.Window},
			Metrics:       m,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create driver for %s: %w", dev.Label(), err)
		}
		drivers = append(drivers, d)
	}

	return &Orchestrator{
		config:  config,
		source:  src,
		devices: devices,
		drivers: drivers,
		state:   NewStateManager(config.Window, len(devices), config.LayoutStyle),
		redraw:  make(chan struct{}, 1),
		display: display.NewTerminalDisplay(&display.DisplayConfig{Color: config.Color, Width: config.Width}),
	}, nil
}

// Run starts the orchestrator main loop
func (o *Orchestrator) Run(ctx context.Context) error {
	util.LogInfo("Starting presence watch", util.F("devices", len(o.devices)), util.F("window", o.state.Window().String()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer o.Close()

	keyboard, err := interaction.NewKeyboardReader()
	if err != nil {
		return fmt.Errorf("failed to initialize keyboard: %w", err)
	}
	o.keyboard = keyboard
	defer o.keyboard.Close()

	o.display.EnterAlternateScreen()
	defer o.display.ExitAlternateScreen()
	o.updateDisplay()

	if err := o.startDrivers(ctx); err != nil {
		return err
	}

	if o.config.WatchDir != "" {
		if err := o.startWatcher(); err != nil {
			util.LogWarn("File watching disabled", util.F("dir", o.config.WatchDir), util.F("error", err.Error()))
		}
	}

	uiTicker := o.config.Clock.NewTicker(o.config.UIRefreshRate)
	defer uiTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Shutting down presence watch...")
			return nil

		case <-uiTicker.Chan():
			o.updateDisplay()

		case <-o.redraw:
			o.updateDisplay()

		case event, ok := <-o.watcherEvents():
			if ok {
				o.handleFileChange(event)
			}

		case keyEvent := <-o.keyboard.Events():
			if o.HandleAction(interaction.ActionFor(keyEvent)) {
				return nil
			}
			o.updateDisplay()
		}
	}
}

// startDrivers starts every driver and forwards holder updates to the redraw channel
func (o *Orchestrator) startDrivers(ctx context.Context) error {
	for _, d := range o.drivers {
		if err := d.Start(ctx); err != nil {
			return fmt.Errorf("failed to start refresh driver: %w", err)
		}
		go o.forwardUpdates(ctx, d.Holder())
	}
	return nil
}

func (o *Orchestrator) forwardUpdates(ctx context.Context, h *refresh.StateHolder) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.Updates():
			select {
			case o.redraw <- struct{}{}:
			default:
			}
		}
	}
}

func (o *Orchestrator) watcherEvents() <-chan source.ChangeEvent {
	if o.watcher == nil {
		return nil
	}
	return o.watcher.Events()
}

// startWatcher initializes the file watcher
func (o *Orchestrator) startWatcher() error {
	watcher, err := source.NewWatcher(o.config.WatchDir)
	if err != nil {
		return err
	}
	o.watcher = watcher
	return nil
}

// handleFileChange drops cached days and triggers the driver whose history file changed
func (o *Orchestrator) handleFileChange(event source.ChangeEvent) {
	util.LogDebug("History file changed", util.F("path", event.Path), util.F("op", event.Operation))
	for i, dev := range o.devices {
		if !strings.EqualFold(source.FileNameFor(dev.ID), event.FileName) {
			continue
		}
		if inv, ok := o.source.(interface{ Invalidate(string) }); ok {
			inv.Invalidate(dev.ID)
		}
		o.drivers[i].Trigger()
	}
}

// now is the clock time in the configured zone
func (o *Orchestrator) now() time.Time {
	return o.config.Clock.Now().In(o.config.Location)
}

// HandleAction applies a keyboard action and reports whether to quit
func (o *Orchestrator) HandleAction(action interaction.Action) bool {
	switch action {
	case interaction.ActionQuit:
		return true
	case interaction.ActionPrevDay:
		o.setWindow(o.dayBase().Shift(-1))
	case interaction.ActionNextDay:
		next := o.dayBase().Shift(1)
		if next.ID() > timeline.Day(o.now()).ID() {
			o.state.UpdateInteractionState(func(s *InteractionState) { s.StatusMessage = "already at today" })
			return false
		}
		o.setWindow(next)
	case interaction.ActionToday:
		o.setWindow(timeline.Day(o.now()))
	case interaction.ActionRolling:
		o.setWindow(timeline.Rolling())
	case interaction.ActionRefresh:
		for _, d := range o.drivers {
			d.Trigger()
		}
	case interaction.ActionPrevDevice:
		o.state.MoveSelection(-1)
	case interaction.ActionNextDevice:
		o.state.MoveSelection(1)
	case interaction.ActionToggleHelp:
		o.state.UpdateInteractionState(func(s *InteractionState) { s.ShowHelp = !s.ShowHelp })
	case interaction.ActionToggleDetail:
		o.state.UpdateInteractionState(func(s *InteractionState) { s.ShowDetail = !s.ShowDetail })
	case interaction.ActionToggleLayout:
		o.state.ToggleLayout()
	}
	return false
}

// dayBase is the day that day navigation moves from; rolling starts from today
func (o *Orchestrator) dayBase() timeline.TargetWindow {
	w := o.state.Window()
	if w.IsRolling() {
		return timeline.Day(o.now())
	}
	return w
}

func (o *Orchestrator) setWindow(w timeline.TargetWindow) {
	o.state.SetWindow(w)
	o.state.UpdateInteractionState(func(s *InteractionState) { s.StatusMessage = "" })
	for _, d := range o.drivers {
		d.SetWindow(w)
	}
	util.LogDebug("Window changed", util.F("window", w.String()))
}

// BuildView assembles the screen model from every driver's latest snapshot.
// Snapshots fetched for an older window are still shown until replaced.
func (o *Orchestrator) BuildView() display.ScreenState {
	ia := o.state.GetInteractionState()
	view := layout.View{
		Window:      o.state.Window().String(),
		Now:         o.now(),
		Selected:    ia.Selected,
		VisibleRows: o.config.VisibleRows,
		ShowDetail:  ia.ShowDetail,
		Color:       o.config.Color,
	}

	for i, dev := range o.devices {
		h := o.drivers[i].Holder()
		dv := layout.DeviceView{
			Device:  dev,
			Loading: h.Loading(),
			Err:     h.LastError(),
		}
		if snap, ok := h.Latest(); ok {
			dv.HasData = true
			dv.Intervals = snap.Intervals
			dv.Summary = timeline.Summarize(snap.Intervals)
			dv.RefreshedAt = snap.RefreshedAt
		}
		view.Devices = append(view.Devices, dv)
	}

	return display.ScreenState{
		View:          view,
		LayoutStyle:   ia.LayoutStyle,
		ShowHelp:      ia.ShowHelp,
		StatusMessage: ia.StatusMessage,
	}
}

// updateDisplay updates the terminal display
func (o *Orchestrator) updateDisplay() {
	o.display.Render(o.BuildView())
}

// Drivers exposes the per-device drivers in device order
func (o *Orchestrator) Drivers() []*refresh.Driver {
	return o.drivers
}

// Close stops drivers and the file watcher
func (o *Orchestrator) Close() error {
	for _, d := range o.drivers {
		d.Stop()
	}
	if o.watcher != nil {
		if err := o.watcher.Close(); err != nil {
			return fmt.Errorf("failed to close file watcher: %w", err)
		}
		o.watcher = nil
	}
	return nil
}
