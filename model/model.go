package model

import (
	"fmt"
	"time"
)

// TouchAction is the masked action of a touch primitive.
type TouchAction int

const (
	ActionDown TouchAction = iota
	ActionMove
	ActionUp
	// ActionPointerDown is a secondary pointer going down while another one is already down.
	ActionPointerDown
	// ActionPointerUp is a secondary pointer going up while another one stays down.
	ActionPointerUp
)

var actionNames = map[TouchAction]string{
	ActionDown:        "down",
	ActionMove:        "move",
	ActionUp:          "up",
	ActionPointerDown: "pointer_down",
	ActionPointerUp:   "pointer_up",
}

func (a TouchAction) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}

	return fmt.Sprintf("TouchAction(%d)", int(a))
}

// ParseTouchAction is the inverse of TouchAction.String.
func ParseTouchAction(s string) (TouchAction, bool) {
	for action, name := range actionNames {
		if name == s {
			return action, true
		}
	}

	return 0, false
}

// TouchEvent is one normalized touch primitive. Time is an offset on the monotonic timeline the
// gesture scheduler uses.
type TouchEvent struct {
	PointerID int
	Action    TouchAction
	X         float64
	Y         float64
	Time      time.Duration
}

// Layout identifies one of the base keyboards.
type Layout int

const (
	Caps Layout = iota
	Lowercase
	Numeric
)

func (l Layout) String() string {
	switch l {
	case Caps:
		return "Caps"
	case Lowercase:
		return "Lowercase"
	case Numeric:
		return "Numeric"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// SwitchKey is what tapping the mode switch glyph will do next.
type SwitchKey int

const (
	ToUpper SwitchKey = iota
	ToLower
	NumLock
)

func (s SwitchKey) String() string {
	switch s {
	case ToUpper:
		return "ToUpper"
	case ToLower:
		return "ToLower"
	case NumLock:
		return "NumLock"
	default:
		return fmt.Sprintf("SwitchKey(%d)", int(s))
	}
}

// Decoration is the label drawn on the switch key.
func (s SwitchKey) Decoration() string {
	switch s {
	case ToUpper:
		return "Ab"
	case ToLower:
		return "ab"
	case NumLock:
		return "12"
	default:
		return "??"
	}
}

// KeyInfo is the centre of one key.
type KeyInfo struct {
	Char rune
	X    float64
	Y    float64
}

// CharCount is how many times a character was committed.
type CharCount struct {
	Char  rune
	Count int
}

// CommitEvent is one committed character as stored by the statistics database.
type CommitEvent struct {
	Char      rune
	Layout    Layout
	Timestamp time.Time
}

// Pair counts how often Next was committed directly after Prev.
type Pair struct {
	Prev    rune
	Next    rune
	Pressed int
}
