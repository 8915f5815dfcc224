package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls int
	err   error
}

func (c *countingSource) FetchEvents(_ context.Context, _, window string) ([]model.PresenceEvent, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []model.PresenceEvent{{Timestamp: window + " 08:00:00", Online: true}}, nil
}

func TestCachedSource(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC))
	inner := &countingSource{}
	src := NewCachedSource(inner, clock, time.UTC, time.Minute)
	ctx := context.Background()

	t.Run("past day is cached", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			events, err := src.FetchEvents(ctx, "aa:bb", "2024-05-01")
			require.NoError(t, err)
			require.Len(t, events, 1)
		}
		assert.Equal(t, 1, inner.calls)
	})

	t.Run("today and rolling bypass the cache", func(t *testing.T) {
		inner.calls = 0
		_, _ = src.FetchEvents(ctx, "aa:bb", "2024-05-02")
		_, _ = src.FetchEvents(ctx, "aa:bb", "2024-05-02")
		_, _ = src.FetchEvents(ctx, "aa:bb", "")
		assert.Equal(t, 3, inner.calls)
	})

	t.Run("invalidate and expiry refetch", func(t *testing.T) {
		inner.calls = 0
		src.Invalidate("AA:BB")
		_, _ = src.FetchEvents(ctx, "aa:bb", "2024-05-01")
		assert.Equal(t, 1, inner.calls)

		clock.Advance(time.Minute)
		_, _ = src.FetchEvents(ctx, "aa:bb", "2024-05-01")
		assert.Equal(t, 2, inner.calls)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		failing := &countingSource{err: errors.New("down")}
		s := NewCachedSource(failing, clock, time.UTC, time.Minute)
		_, err := s.FetchEvents(ctx, "aa:bb", "2024-04-30")
		assert.Error(t, err)
		_, err = s.FetchEvents(ctx, "aa:bb", "2024-04-30")
		assert.Error(t, err)
		assert.Equal(t, 2, failing.calls)
	})
}

func TestCachedSourceDelegatesDiscovery(t *testing.T) {
	dir := t.TempDir()
	writeLines(t, dir+"/phone.jsonl", `{"Date":"2024-05-01 00:00:00","Now":1}`)

	src := NewCachedSource(NewFileSource(dir), nil, nil, 0)
	devices, err := Discover(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "phone", devices[0].ID)
	assert.IsType(t, &FileSource{}, src.Unwrap())
	assert.NoError(t, src.Close())
}
