package formatter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/core/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []TimelineRow {
	intervals := []model.TimelineInterval{
		{StartFraction: 0, EndFraction: 50, Status: model.StatusOn, Timestamp: "2024-05-01 12:00:00", Iface: "eth0", IP: "10.0.0.5", Known: model.KnownYes},
		{StartFraction: 50, EndFraction: 100, Status: model.StatusOff, Timestamp: "2024-05-01 18:00:00", Iface: "eth0", IP: "10.0.0.5", Known: model.KnownNo},
	}
	return []TimelineRow{
		{
			Device:     model.Device{ID: "aa:bb", Name: "Phone", IP: "10.0.0.5"},
			Window:     "2024-05-01",
			EventCount: 4,
			Summary:    timeline.Summarize(intervals),
			Intervals:  intervals,
		},
		{
			Device: model.Device{ID: "cc:dd"},
			Window: "2024-05-01",
		},
	}
}

func TestNew(t *testing.T) {
	for _, name := range []string{"", "bar", "TABLE", "intervals", "json", "csv", "summary"} {
		f, err := New(name, Options{})
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}
	_, err := New("xml", Options{})
	assert.Error(t, err)
}

func TestBarCells(t *testing.T) {
	tests := []struct {
		name      string
		intervals []model.TimelineInterval
		width     int
		want      string
	}{
		{
			name: "half and half",
			intervals: []model.TimelineInterval{
				{StartFraction: 0, EndFraction: 50, Status: model.StatusOn},
				{StartFraction: 50, EndFraction: 100, Status: model.StatusOff},
			},
			width: 10,
			want:  "█████░░░░░",
		},
		{
			name: "unreported edges",
			intervals: []model.TimelineInterval{
				{StartFraction: 25, EndFraction: 75, Status: model.StatusOn},
			},
			width: 4,
			want:  "·██·",
		},
		{
			name: "majority wins inside a cell",
			intervals: []model.TimelineInterval{
				{StartFraction: 0, EndFraction: 30, Status: model.StatusOn},
				{StartFraction: 30, EndFraction: 100, Status: model.StatusOff},
			},
			width: 2,
			want:  "█░",
		},
		{
			name: "rolling run across midnight",
			intervals: []model.TimelineInterval{
				{StartFraction: 83.3333, EndFraction: 41.6667, Status: model.StatusOn},
			},
			width: 24,
			want:  "██████████··········████",
		},
		{
			name: "rolling runs on both sides of midnight",
			intervals: []model.TimelineInterval{
				{StartFraction: 75, EndFraction: 25, Status: model.StatusOff},
				{StartFraction: 25, EndFraction: 50, Status: model.StatusOn},
			},
			width: 4,
			want:  "░█·░",
		},
		{
			name:  "empty",
			width: 3,
			want:  "···",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderBar(tt.intervals, tt.width, false))
			assert.Len(t, BarCells(tt.intervals, tt.width), tt.width)
		})
	}

	assert.Nil(t, BarCells(nil, 0))
}

func TestRenderBar_Color(t *testing.T) {
	out := RenderBar(sampleRows()[0].Intervals, 10, true)
	assert.Contains(t, out, "\033[32m█████\033[0m")
	assert.Contains(t, out, "\033[31m░░░░░\033[0m")
}

func TestRenderAxis(t *testing.T) {
	axis := RenderAxis(48)
	assert.Equal(t, 48, len([]rune(axis)))
	assert.True(t, strings.HasPrefix(axis, "00:00"))
	assert.True(t, strings.HasSuffix(axis, "24:00"))
	for _, label := range axisLabels {
		assert.Contains(t, axis, label)
	}

	assert.Equal(t, "00:00  24:00", RenderAxis(12))

	assert.Equal(t, "", RenderAxis(3))
}

func TestBarFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewBarFormatter(Options{Width: 62}).Format(&buf, sampleRows()))
	out := buf.String()

	assert.Contains(t, out, "Phone (10.0.0.5)  2024-05-01  online 50.00%")
	assert.Contains(t, out, "|"+strings.Repeat("█", 30)+strings.Repeat("░", 30)+"|")
	assert.Contains(t, out, "no data")
	assert.Contains(t, out, "cc:dd")
}

func TestDetailText(t *testing.T) {
	iv := sampleRows()[0].Intervals[0]
	assert.Equal(t, "Date: 2024-05-01 12:00:00\nIface: eth0\nIP: 10.0.0.5\nKnown: true", DetailText(iv))

	iv.Known = model.KnownUnset
	assert.Contains(t, DetailText(iv), "Known: unknown")
}

func TestIntervalFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewIntervalFormatter(Options{}).Format(&buf, sampleRows()))
	out := buf.String()

	assert.Contains(t, out, "00:00-12:00 on")
	assert.Contains(t, out, "12:00-24:00 off")
	assert.Contains(t, out, "12h 0m")
	assert.Contains(t, out, "Iface: eth0")
	assert.Contains(t, out, "  no data")
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter().Format(&buf, sampleRows()))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "┌"))
	assert.Contains(t, lines[1], "Device")
	assert.Contains(t, lines[3], "Phone")
	assert.Contains(t, lines[3], "50.00%")
	assert.Contains(t, lines[4], "cc:dd")
	assert.Contains(t, lines[4], " - ")
	assert.True(t, strings.HasPrefix(lines[5], "└"))

	// every line has the same display width
	width := len([]rune(lines[0]))
	for _, l := range lines {
		assert.Equal(t, width, len([]rune(l)), l)
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, sampleRows()))

	var decoded []map[string]interface{}
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "2024-05-01", decoded[0]["window"])
	intervals := decoded[0]["intervals"].([]interface{})
	require.Len(t, intervals, 2)
	first := intervals[0].(map[string]interface{})
	assert.Equal(t, "on", first["status"])
	assert.Equal(t, true, first["known"])
	assert.Equal(t, 50.0, first["end"])

	buf.Reset()
	require.NoError(t, NewJSONFormatter().Format(&buf, nil))
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter().Format(&buf, sampleRows()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Device", records[0][0])
	assert.Equal(t, []string{
		"aa:bb", "Phone", "2024-05-01", "on", "00:00", "12:00",
		"0.0000", "50.0000", "12h 0m", "2024-05-01 12:00:00", "eth0", "10.0.0.5", "true",
	}, records[1])
	assert.Equal(t, "false", records[2][12])
}

func TestSummaryFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSummaryFormatter().Format(&buf, sampleRows()))
	out := buf.String()

	assert.Contains(t, out, "Devices:          2 (1 with data)")
	assert.Contains(t, out, "Online at end:    0")
	assert.Contains(t, out, "Average online:   50.00%")
	assert.Contains(t, out, "Most online:      Phone (50.00%)")
}
