package refresh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/core/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAll(t *testing.T) {
	src := &fakeSource{fetch: func(_ context.Context, device, _ string) ([]model.PresenceEvent, error) {
		if device == "empty" {
			return nil, nil
		}
		return sampleEvents(), nil
	}}
	day, err := timeline.ParseWindow("2024-05-01", time.UTC)
	require.NoError(t, err)

	devices := []model.Device{{ID: "a", Name: "Phone"}, {ID: "empty"}, {ID: "c"}}
	results, err := LoadAll(context.Background(), BatchRequest{
		Source:        src,
		Reconstructor: timeline.NewReconstructor(time.UTC),
		Devices:       devices,
		Window:        day,
		Now:           testNow,
		Concurrency:   2,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "Phone", results[0].Device.Label())
	assert.Len(t, results[0].Intervals, 2)
	assert.InDelta(t, 25.0, results[0].Summary.OnlinePercent, 1e-9)
	assert.Empty(t, results[1].Intervals)
	assert.Equal(t, "c", results[2].Device.ID)
	assert.Equal(t, 3, src.callCount())
}

func TestLoadAll_Error(t *testing.T) {
	boom := errors.New("nope")
	src := &fakeSource{fetch: func(_ context.Context, device, _ string) ([]model.PresenceEvent, error) {
		if device == "bad" {
			return nil, boom
		}
		return sampleEvents(), nil
	}}

	_, err := LoadAll(context.Background(), BatchRequest{
		Source:        src,
		Reconstructor: timeline.NewReconstructor(time.UTC),
		Devices:       []model.Device{{ID: "ok"}, {ID: "bad"}},
		Window:        timeline.Rolling(),
		Now:           testNow,
	})
	assert.ErrorIs(t, err, boom)
}
