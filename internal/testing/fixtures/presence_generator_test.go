package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/penwyp/go-presence-timeline/internal/data/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratedFilesDecode(t *testing.T) {
	g := NewTestDataGenerator(t.TempDir())
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, g.GenerateSimpleDay("aa:bb", day))
	require.NoError(t, g.AppendRawLines("aa:bb", "not json", `{"Date":"garbage","Now":1}`))
	require.NoError(t, g.GenerateFlapping("cc:dd", day.Add(time.Hour), 4, 10*time.Minute))
	require.NoError(t, g.CreateEmptyDevice("ee:ff"))

	src := source.NewFileSource(g.GetBaseDir())
	ctx := context.Background()

	events, err := src.FetchEvents(ctx, "aa:bb", "2024-05-01")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "2024-05-01 08:00:00", events[0].Timestamp)
	assert.True(t, events[0].Online)
	assert.False(t, events[1].Online)

	events, err = src.FetchEvents(ctx, "cc:dd", "2024-05-01")
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, "2024-05-01 01:30:00", events[0].Timestamp)

	events, err = src.FetchEvents(ctx, "ee:ff", "")
	require.NoError(t, err)
	assert.Empty(t, events)
}
