package display

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/presentation/layout"
	"github.com/penwyp/go-presence-timeline/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testState() ScreenState {
	now := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	return ScreenState{
		View: layout.View{
			Window:      "2024-05-01",
			Now:         now,
			VisibleRows: 10,
			Devices: []layout.DeviceView{
				{
					Device:      model.Device{ID: "aa:bb", Name: "Phone"},
					Intervals:   []model.TimelineInterval{{StartFraction: 0, EndFraction: 100, Status: model.StatusOn}},
					HasData:     true,
					RefreshedAt: now.Add(-3 * time.Minute),
				},
			},
		},
	}
}

func TestCompose(t *testing.T) {
	td := NewTerminalDisplay(&DisplayConfig{Width: 60, Out: &bytes.Buffer{}})
	lines := td.Compose(testState(), 60)

	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "PRESENCE TIMELINE"))
	assert.True(t, strings.HasSuffix(lines[0], "window 2024-05-01  18:00:00"))
	assert.Equal(t, 60, len([]rune(lines[0])))

	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "Phone")
	assert.Contains(t, joined, "Phone: updated 3m ago")
	assert.Contains(t, lines[len(lines)-1], "q quit")
}

func TestCompose_ErrorAndEmpty(t *testing.T) {
	td := NewTerminalDisplay(&DisplayConfig{Out: &bytes.Buffer{}})

	state := testState()
	state.View.Devices[0].Err = errors.New("timeout")
	joined := strings.Join(td.Compose(state, 80), "\n")
	assert.Contains(t, joined, "Phone: timeout (showing last good data)")

	state.View.Devices = nil
	joined = strings.Join(td.Compose(state, 80), "\n")
	assert.Contains(t, joined, "No devices configured")

	state.StatusMessage = "custom"
	joined = strings.Join(td.Compose(state, 80), "\n")
	assert.Contains(t, joined, "custom")
}

func TestCompose_Help(t *testing.T) {
	td := NewTerminalDisplay(&DisplayConfig{Out: &bytes.Buffer{}})
	state := testState()
	state.ShowHelp = true
	joined := strings.Join(td.Compose(state, 80), "\n")
	assert.Contains(t, joined, "Rolling last 24 hours")
	assert.NotContains(t, joined, "PRESENCE TIMELINE")
}

func TestRenderWritesFrame(t *testing.T) {
	var buf bytes.Buffer
	td := NewTerminalDisplay(&DisplayConfig{Width: 60, Out: &buf})

	td.EnterAlternateScreen()
	td.Render(testState())
	td.ExitAlternateScreen()

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, util.EnterAltScreen))
	assert.Contains(t, out, util.MoveCursorHome+util.ClearLine+"PRESENCE TIMELINE")
	assert.Contains(t, out, util.ClearToEnd)
	assert.True(t, strings.HasSuffix(out, util.ExitAltScreen))
}
