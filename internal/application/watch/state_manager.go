package watch

import (
	"sync"

	"github.com/penwyp/go-presence-timeline/internal/core/timeline"
	"github.com/penwyp/go-presence-timeline/internal/presentation/layout"
)

// InteractionState is the keyboard-driven part of the screen
type InteractionState struct {
	Selected      int
	ShowHelp      bool
	ShowDetail    bool
	LayoutStyle   int
	StatusMessage string
}

// StateManager manages view state in a thread-safe manner
type StateManager struct {
	mu          sync.RWMutex
	window      timeline.TargetWindow
	interaction InteractionState
	deviceCount int
}

// NewStateManager creates a StateManager for deviceCount rows
func NewStateManager(window timeline.TargetWindow, deviceCount, layoutStyle int) *StateManager {
	return &StateManager{
		window:      window,
		deviceCount: deviceCount,
		interaction: InteractionState{LayoutStyle: layoutStyle},
	}
}

// Window returns the shared target window
func (sm *StateManager) Window() timeline.TargetWindow {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.window
}

// SetWindow replaces the shared target window
func (sm *StateManager) SetWindow(w timeline.TargetWindow) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.window = w
}

// GetInteractionState returns a copy of the interaction state
func (sm *StateManager) GetInteractionState() InteractionState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.interaction
}

// UpdateInteractionState updates specific fields of interaction state
func (sm *StateManager) UpdateInteractionState(updateFunc func(*InteractionState)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	updateFunc(&sm.interaction)
}

// MoveSelection moves the selected row by delta, clamped to the device list
func (sm *StateManager) MoveSelection(delta int) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sel := sm.interaction.Selected + delta
	if sel < 0 {
		sel = 0
	}
	if sel > sm.deviceCount-1 {
		sel = sm.deviceCount - 1
	}
	sm.interaction.Selected = sel
}

// ToggleLayout cycles the layout style
func (sm *StateManager) ToggleLayout() {
	sm.UpdateInteractionState(func(s *InteractionState) {
		s.LayoutStyle = layout.NextStyle(s.LayoutStyle)
	})
}
