package source

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/penwyp/go-presence-timeline/internal/core/cache"
	"github.com/penwyp/go-presence-timeline/internal/core/constants"
	"github.com/penwyp/go-presence-timeline/internal/core/model"
)

const (
	DefaultCacheTTL     = 5 * time.Minute
	defaultCacheEntries = 256
)

// CachedSource memoizes fetches of past days. Today and the rolling window
// always go to the wrapped source.
type CachedSource struct {
	inner    Source
	cache    *cache.MemoryCache
	clock    clockwork.Clock
	location *time.Location
}

// NewCachedSource wraps inner; a non-positive ttl uses DefaultCacheTTL
func NewCachedSource(inner Source, clock clockwork.Clock, loc *time.Location, ttl time.Duration) *CachedSource {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.Local
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedSource{
		inner:    inner,
		cache:    cache.NewMemoryCache(clock, ttl, defaultCacheEntries),
		clock:    clock,
		location: loc,
	}
}

func (s *CachedSource) cacheable(window string) bool {
	if window == "" {
		return false
	}
	today := s.clock.Now().In(s.location).Format(constants.DayLayout)
	return window < today
}

func (s *CachedSource) FetchEvents(ctx context.Context, deviceID, window string) ([]model.PresenceEvent, error) {
	if !s.cacheable(window) {
		return s.inner.FetchEvents(ctx, deviceID, window)
	}

	key := cache.Key(deviceID, window)
	if events, ok := s.cache.Get(key); ok {
		return events, nil
	}
	events, err := s.inner.FetchEvents(ctx, deviceID, window)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, events)
	return events, nil
}

// Invalidate forgets every cached window of a device
func (s *CachedSource) Invalidate(deviceID string) {
	s.cache.InvalidateDevice(deviceID)
}

// ListDevices delegates to the wrapped source when it can enumerate devices
func (s *CachedSource) ListDevices(ctx context.Context) ([]string, error) {
	if d, ok := s.inner.(Discoverer); ok {
		return d.ListDevices(ctx)
	}
	return []string{}, nil
}

// Unwrap returns the wrapped source
func (s *CachedSource) Unwrap() Source {
	return s.inner
}

func (s *CachedSource) Close() error {
	return Close(s.inner)
}
