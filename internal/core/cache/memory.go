// Package cache keeps recently fetched presence events in memory.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/util"
)

const keySep = "|"

// MemoryCacheEntry is one cached fetch result
type MemoryCacheEntry struct {
	Events       []model.PresenceEvent
	StoredAt     time.Time
	LastAccessed time.Time
}

// MemoryCache maps device/window keys to events, expiring entries after ttl
// and evicting the least recently used beyond maxEntries
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]*MemoryCacheEntry
	clock      clockwork.Clock
	ttl        time.Duration
	maxEntries int
}

func NewMemoryCache(clock clockwork.Clock, ttl time.Duration, maxEntries int) *MemoryCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryCache{
		entries:    make(map[string]*MemoryCacheEntry),
		clock:      clock,
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// Key builds the cache key of a device and window
func Key(deviceID, window string) string {
	return strings.ToLower(deviceID) + keySep + window
}

func (mc *MemoryCache) Set(key string, events []model.PresenceEvent) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := mc.clock.Now()
	mc.entries[key] = &MemoryCacheEntry{Events: events, StoredAt: now, LastAccessed: now}

	if mc.maxEntries > 0 && len(mc.entries) > mc.maxEntries {
		mc.evictOldest()
	}
}

// Get returns a copy of the cached events; expired entries are dropped
func (mc *MemoryCache) Get(key string) ([]model.PresenceEvent, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	entry, ok := mc.entries[key]
	if !ok {
		return nil, false
	}
	now := mc.clock.Now()
	if mc.ttl > 0 && now.Sub(entry.StoredAt) >= mc.ttl {
		delete(mc.entries, key)
		return nil, false
	}
	entry.LastAccessed = now

	events := make([]model.PresenceEvent, len(entry.Events))
	copy(events, entry.Events)
	return events, true
}

// InvalidateDevice drops every window cached for a device
func (mc *MemoryCache) InvalidateDevice(deviceID string) int {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	prefix := strings.ToLower(deviceID) + keySep
	removed := 0
	for key := range mc.entries {
		if strings.HasPrefix(key, prefix) {
			delete(mc.entries, key)
			removed++
		}
	}
	if removed > 0 {
		util.LogDebug("MemoryCache: invalidated device", util.F("device", deviceID), util.F("entries", removed))
	}
	return removed
}

func (mc *MemoryCache) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.entries = make(map[string]*MemoryCacheEntry)
}

func (mc *MemoryCache) Len() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.entries)
}

// evictOldest removes the least recently accessed entry; caller holds mu
func (mc *MemoryCache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range mc.entries {
		if oldestKey == "" || entry.LastAccessed.Before(oldest) {
			oldestKey, oldest = key, entry.LastAccessed
		}
	}
	delete(mc.entries, oldestKey)
}
