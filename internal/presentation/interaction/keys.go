// Package interaction turns raw key presses into timeline navigation actions.
package interaction

// KeyEvent represents a keyboard event
type KeyEvent struct {
	Key  rune
	Type KeyType
}

// KeyType represents the type of key pressed
type KeyType int

const (
	KeyChar KeyType = iota
	KeyEscape
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
)

// ParseInput decodes one read from a raw-mode terminal
func ParseInput(buf []byte) *KeyEvent {
	if len(buf) == 0 {
		return nil
	}

	if buf[0] == 3 { // Ctrl+C
		return &KeyEvent{Key: 3, Type: KeyChar}
	}

	if buf[0] == 27 {
		if len(buf) == 1 {
			return &KeyEvent{Key: 27, Type: KeyEscape}
		}
		if len(buf) >= 3 && buf[1] == '[' {
			switch buf[2] {
			case 'A':
				return &KeyEvent{Type: KeyArrowUp}
			case 'B':
				return &KeyEvent{Type: KeyArrowDown}
			case 'C':
				return &KeyEvent{Type: KeyArrowRight}
			case 'D':
				return &KeyEvent{Type: KeyArrowLeft}
			}
		}
		return nil
	}

	return &KeyEvent{Key: rune(buf[0]), Type: KeyChar}
}

// Action is what a key press asks the view to do
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionPrevDay
	ActionNextDay
	ActionToday
	ActionRolling
	ActionRefresh
	ActionPrevDevice
	ActionNextDevice
	ActionToggleHelp
	ActionToggleDetail
	ActionToggleLayout
)

// ActionFor maps a key event to an action
func ActionFor(ev KeyEvent) Action {
	switch ev.Type {
	case KeyEscape:
		return ActionQuit
	case KeyArrowLeft:
		return ActionPrevDay
	case KeyArrowRight:
		return ActionNextDay
	case KeyArrowUp:
		return ActionPrevDevice
	case KeyArrowDown:
		return ActionNextDevice
	}

	switch ev.Key {
	case 'q', 'Q', 3:
		return ActionQuit
	case '[':
		return ActionPrevDay
	case ']':
		return ActionNextDay
	case 't', 'T':
		return ActionToday
	case 'l', 'L':
		return ActionRolling
	case 'r', 'R':
		return ActionRefresh
	case 'k':
		return ActionPrevDevice
	case 'j':
		return ActionNextDevice
	case '?':
		return ActionToggleHelp
	case 'd', 'D':
		return ActionToggleDetail
	case 'v', 'V':
		return ActionToggleLayout
	}
	return ActionNone
}
