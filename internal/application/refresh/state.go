package refresh

import (
	"sync"
	"time"

	"github.com/penwyp/go-presence-timeline/internal/core/model"
)

// Snapshot is one published reconstruction
type Snapshot struct {
	Target      Target
	Intervals   []model.TimelineInterval
	EventCount  int
	RefreshedAt time.Time
}

// StateHolder keeps the latest snapshot in a single slot
type StateHolder struct {
	mu      sync.RWMutex
	latest  Snapshot
	has     bool
	lastErr error
	loading bool
	updates chan struct{}
}

// NewStateHolder creates an empty holder
func NewStateHolder() *StateHolder {
	return &StateHolder{updates: make(chan struct{}, 1)}
}

// Publish replaces the held snapshot and clears the last error
func (h *StateHolder) Publish(s Snapshot) {
	h.mu.Lock()
	h.latest = s
	h.has = true
	h.lastErr = nil
	h.loading = false
	h.mu.Unlock()
	h.notify()
}

// Latest returns the held snapshot; ok is false until the first publish
func (h *StateHolder) Latest() (Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest, h.has
}

// SetError records a failed cycle without touching the snapshot
func (h *StateHolder) SetError(err error) {
	h.mu.Lock()
	h.lastErr = err
	h.loading = false
	h.mu.Unlock()
	h.notify()
}

// LastError returns the error of the most recent cycle, nil after a success
func (h *StateHolder) LastError() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastErr
}

// SetLoading marks a cycle in progress
func (h *StateHolder) SetLoading(loading bool) {
	h.mu.Lock()
	h.loading = loading
	h.mu.Unlock()
}

// Loading reports whether a cycle is in progress
func (h *StateHolder) Loading() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loading
}

// Updates signals after every publish or failure. Signals coalesce.
func (h *StateHolder) Updates() <-chan struct{} {
	return h.updates
}

func (h *StateHolder) notify() {
	select {
	case h.updates <- struct{}{}:
	default:
	}
}
