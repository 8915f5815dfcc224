package watch

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/core/timeline"
	"github.com/penwyp/go-presence-timeline/internal/data/source"
	"github.com/penwyp/go-presence-timeline/internal/metrics"
	"github.com/penwyp/go-presence-timeline/internal/presentation/display"
	"github.com/penwyp/go-presence-timeline/internal/presentation/interaction"
	"github.com/penwyp/go-presence-timeline/internal/presentation/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	mu          sync.Mutex
	calls       map[string]int
	failOn      string
	invalidated []string
}

func (s *stubSource) Invalidate(device string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = append(s.invalidated, device)
}

func (s *stubSource) FetchEvents(_ context.Context, device, _ string) ([]model.PresenceEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[device]++
	if device == s.failOn {
		return nil, errors.New("unreachable")
	}
	return []model.PresenceEvent{
		{Timestamp: "2024-05-01 06:00:00", Online: true},
		{Timestamp: "2024-05-01 12:00:00", Online: false},
	}, nil
}

func (s *stubSource) count(device string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[device]
}

var testNow = time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)

func newTestOrchestrator(t *testing.T, src *stubSource, window timeline.TargetWindow) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(&WatchConfig{
		Devices: []model.Device{
			{ID: "aa:bb:cc:dd:ee:01", Name: "phone"},
			{ID: "aa:bb:cc:dd:ee:02", Name: "laptop"},
		},
		Window:          window,
		RefreshInterval: time.Minute,
		Location:        time.UTC,
		Clock:           clockwork.NewFakeClockAt(testNow),
	}, src, metrics.New())
	require.NoError(t, err)
	o.display = display.NewTerminalDisplay(&display.DisplayConfig{Width: 80, Out: io.Discard})
	t.Cleanup(func() { _ = o.Close() })
	return o
}

func TestWatchConfigValidate(t *testing.T) {
	cfg := &WatchConfig{}
	assert.Error(t, cfg.Validate())

	cfg = &WatchConfig{Devices: []model.Device{{ID: "x"}}}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 60*time.Second, cfg.RefreshInterval)
	assert.Equal(t, time.Second, cfg.UIRefreshRate)
	assert.Equal(t, 10, cfg.VisibleRows)
	assert.NotNil(t, cfg.Clock)
	assert.NotNil(t, cfg.Location)
}

func TestNewOrchestratorLimitsDevices(t *testing.T) {
	devices := make([]model.Device, 5)
	for i := range devices {
		devices[i] = model.Device{ID: string(rune('a' + i))}
	}
	o, err := NewOrchestrator(&WatchConfig{Devices: devices, VisibleRows: 3, Clock: clockwork.NewFakeClock()}, &stubSource{}, nil)
	require.NoError(t, err)
	assert.Len(t, o.Drivers(), 3)
}

func TestHandleActionDayNavigation(t *testing.T) {
	day, err := timeline.ParseWindow("2024-04-30", time.UTC)
	require.NoError(t, err)
	o := newTestOrchestrator(t, &stubSource{}, day)

	assert.False(t, o.HandleAction(interaction.ActionPrevDay))
	assert.Equal(t, "2024-04-29", o.state.Window().ID())
	for _, d := range o.Drivers() {
		assert.Equal(t, "2024-04-29", d.Target().Window.ID())
	}

	o.HandleAction(interaction.ActionNextDay)
	o.HandleAction(interaction.ActionNextDay)
	assert.Equal(t, "2024-05-01", o.state.Window().ID())

	// cannot move past today
	o.HandleAction(interaction.ActionNextDay)
	assert.Equal(t, "2024-05-01", o.state.Window().ID())
	assert.NotEmpty(t, o.state.GetInteractionState().StatusMessage)

	o.HandleAction(interaction.ActionRolling)
	assert.True(t, o.state.Window().IsRolling())
	assert.Empty(t, o.state.GetInteractionState().StatusMessage)

	// from rolling, previous day is yesterday
	o.HandleAction(interaction.ActionPrevDay)
	assert.Equal(t, "2024-04-30", o.state.Window().ID())

	o.HandleAction(interaction.ActionToday)
	assert.Equal(t, "2024-05-01", o.state.Window().ID())
}

func TestHandleActionToggles(t *testing.T) {
	o := newTestOrchestrator(t, &stubSource{}, timeline.Rolling())

	assert.True(t, o.HandleAction(interaction.ActionQuit))

	o.HandleAction(interaction.ActionToggleHelp)
	o.HandleAction(interaction.ActionToggleDetail)
	o.HandleAction(interaction.ActionToggleLayout)
	ia := o.state.GetInteractionState()
	assert.True(t, ia.ShowHelp)
	assert.True(t, ia.ShowDetail)
	assert.Equal(t, layout.StyleCompact, ia.LayoutStyle)

	o.HandleAction(interaction.ActionPrevDevice)
	assert.Equal(t, 0, o.state.GetInteractionState().Selected)
	o.HandleAction(interaction.ActionNextDevice)
	o.HandleAction(interaction.ActionNextDevice)
	assert.Equal(t, 1, o.state.GetInteractionState().Selected)
}

func TestBuildView(t *testing.T) {
	src := &stubSource{failOn: "aa:bb:cc:dd:ee:02"}
	day, err := timeline.ParseWindow("2024-05-01", time.UTC)
	require.NoError(t, err)
	o := newTestOrchestrator(t, src, day)

	ctx := context.Background()
	require.NoError(t, o.Drivers()[0].RefreshOnce(ctx))
	require.Error(t, o.Drivers()[1].RefreshOnce(ctx))

	state := o.BuildView()
	assert.Equal(t, "2024-05-01", state.View.Window)
	require.Len(t, state.View.Devices, 2)

	phone := state.View.Devices[0]
	assert.True(t, phone.HasData)
	assert.NoError(t, phone.Err)
	assert.NotEmpty(t, phone.Intervals)
	assert.Equal(t, model.StatusOff, phone.Summary.LastStatus)

	laptop := state.View.Devices[1]
	assert.False(t, laptop.HasData)
	assert.Error(t, laptop.Err)
}

func TestHandleFileChangeTriggersMatchingDriver(t *testing.T) {
	src := &stubSource{}
	o := newTestOrchestrator(t, src, timeline.Rolling())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, o.startDrivers(ctx))

	assert.Eventually(t, func() bool {
		return src.count("aa:bb:cc:dd:ee:01") == 1 && src.count("aa:bb:cc:dd:ee:02") == 1
	}, 2*time.Second, 10*time.Millisecond)

	o.handleFileChange(source.ChangeEvent{
		Path:      "/tmp/history/aa-bb-cc-dd-ee-02.jsonl",
		FileName:  source.FileNameFor("aa:bb:cc:dd:ee:02"),
		Operation: "WRITE",
	})

	assert.Eventually(t, func() bool {
		return src.count("aa:bb:cc:dd:ee:02") == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, src.count("aa:bb:cc:dd:ee:01"))

	src.mu.Lock()
	defer src.mu.Unlock()
	assert.Equal(t, []string{"aa:bb:cc:dd:ee:02"}, src.invalidated)
}
