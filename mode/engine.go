/*
Package mode keeps track of which layout the keyboard shows and what the mode switch key does next.

The layout and the switch key target are separate on purpose: a numeric layout opened by a long
press is locked (typing digits keeps it), while one reached by cycling with the switch key drops
back to lowercase after one character.
*/
package mode

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/dasdy/tapboard/layout"
	"github.com/dasdy/tapboard/logging"
	"github.com/dasdy/tapboard/model"
)

var logCtx = logging.PackageCtx("mode")

type Event int

const (
	InsertChar Event = iota
	NextMode
	LongPress
)

func (e Event) String() string {
	switch e {
	case InsertChar:
		return "InsertChar"
	case NextMode:
		return "NextMode"
	case LongPress:
		return "LongPress"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// Listener is told about every change of (layout, switch key).
type Listener interface {
	OnModeChange(layout model.Layout, switchKey model.SwitchKey)
}

type ListenerFunc func(layout model.Layout, switchKey model.SwitchKey)

func (f ListenerFunc) OnModeChange(layout model.Layout, switchKey model.SwitchKey) {
	f(layout, switchKey)
}

// Cycle picks the order the switch key walks the layouts in.
type Cycle int

const (
	// CycleForward goes Caps, Numeric, Lowercase, Caps.
	CycleForward Cycle = iota
	// CycleReverse goes Caps, Lowercase, Numeric, Caps.
	CycleReverse
	// CycleImplicit goes forward after lowercase typing and in reverse otherwise.
	CycleImplicit
)

var cycleNames = map[Cycle]string{
	CycleForward:  "forward",
	CycleReverse:  "reverse",
	CycleImplicit: "implicit",
}

func (c Cycle) String() string {
	if name, ok := cycleNames[c]; ok {
		return name
	}

	return fmt.Sprintf("Cycle(%d)", int(c))
}

func ParseCycle(s string) (Cycle, error) {
	for cycle, name := range cycleNames {
		if name == s {
			return cycle, nil
		}
	}

	return CycleForward, fmt.Errorf("unknown cycle %q, expected forward, reverse or implicit", s)
}

type Option func(*Engine)

func WithCycle(cycle Cycle) Option {
	return func(e *Engine) {
		e.cycle = cycle
	}
}

// Engine is the keyboard mode state machine. It is not safe for concurrent use.
type Engine struct {
	keyboards layout.Keyboards
	cycle     Cycle

	current   model.Layout
	switchKey model.SwitchKey
	// implicit is the layout most recently typed on or asked for by the editor.
	implicit model.Layout

	listeners []Listener
}

func New(keyboards layout.Keyboards, opts ...Option) *Engine {
	e := &Engine{
		keyboards: keyboards,
		cycle:     CycleForward,
		current:   model.Caps,
		switchKey: model.NumLock,
		implicit:  model.Caps,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *Engine) Layout() model.Layout {
	return e.current
}

func (e *Engine) SwitchKey() model.SwitchKey {
	return e.switchKey
}

// Rows returns the decorated rows of the current layout.
func (e *Engine) Rows() []string {
	return e.keyboards.Rows(e.current)
}

func (e *Engine) Keyboards() layout.Keyboards {
	return e.keyboards
}

// IsNumlocked reports whether typing keeps the numeric layout up.
func (e *Engine) IsNumlocked() bool {
	return e.current == model.Numeric && e.switchKey == model.NumLock
}

// AddListener calls listener with the current state right away, then on every change.
func (e *Engine) AddListener(listener Listener) {
	listener.OnModeChange(e.current, e.switchKey)
	e.listeners = append(e.listeners, listener)
}

func (e *Engine) Register(event Event) {
	e.transition(event.String(), func() {
		if event == NextMode {
			e.switchMode()
		} else {
			switch e.current {
			case model.Caps:
				e.registerCaps(event)
			case model.Lowercase:
				e.registerLowercase(event)
			case model.Numeric:
				e.registerNumeric(event)
			default:
				panic(fmt.Sprintf("no event handler for layout %v", e.current))
			}
		}

		if event == InsertChar {
			e.implicit = e.current
		}
	})
}

// SetShifted follows the editor's caps hint.
func (e *Engine) SetShifted(shifted bool) {
	e.transition("SetShifted", func() {
		if shifted {
			e.current = model.Caps
			e.switchKey = model.NumLock
		} else {
			e.current = model.Lowercase
			e.switchKey = model.ToUpper
		}

		e.implicit = e.current
	})
}

// SetNumeric switches to digits for numeric fields. Already numlocked keyboards stay as they are.
func (e *Engine) SetNumeric() {
	e.transition("SetNumeric", func() {
		if e.IsNumlocked() {
			return
		}

		e.current = model.Numeric
		e.switchKey = model.ToLower
	})
}

func (e *Engine) transition(cause string, apply func()) {
	preLayout, preSwitchKey := e.current, e.switchKey

	apply()

	if e.current == preLayout && e.switchKey == preSwitchKey {
		return
	}

	slog.DebugContext(logCtx, "Mode changed",
		"cause", cause,
		"layout", e.current,
		"switchKey", e.switchKey)

	// Listeners may register more listeners or trigger further changes, so notify a snapshot
	current, switchKey := e.current, e.switchKey
	for _, listener := range slices.Clone(e.listeners) {
		listener.OnModeChange(current, switchKey)
	}
}

func (e *Engine) registerCaps(event Event) {
	switch event {
	case InsertChar:
		e.current = model.Lowercase
		e.switchKey = model.ToUpper
	case LongPress:
		e.current = model.Numeric
		e.switchKey = model.NumLock
	default:
		panic(fmt.Sprintf("unsupported event for Caps: %v", event))
	}
}

func (e *Engine) registerLowercase(event Event) {
	switch event {
	case InsertChar:
		// Lowercase stays lowercase
	case LongPress:
		e.current = model.Numeric
		e.switchKey = model.NumLock
	default:
		panic(fmt.Sprintf("unsupported event for Lowercase: %v", event))
	}
}

func (e *Engine) registerNumeric(event Event) {
	switch event {
	case InsertChar:
		if e.switchKey == model.NumLock {
			// Locked, keep typing digits
			return
		}

		e.current = model.Lowercase
		e.switchKey = model.ToUpper
	case LongPress:
		// Already numeric
	default:
		panic(fmt.Sprintf("unsupported event for Numeric: %v", event))
	}
}

// switchMode shows the layout the switch key promised, and points the key at the one after it.
func (e *Engine) switchMode() {
	e.current = layoutFor(e.switchKey)
	e.switchKey = targetFor(e.next(e.current))
}

func (e *Engine) next(l model.Layout) model.Layout {
	forward := e.cycle == CycleForward ||
		(e.cycle == CycleImplicit && e.implicit == model.Lowercase)

	switch {
	case forward && l == model.Caps:
		return model.Numeric
	case forward && l == model.Numeric:
		return model.Lowercase
	case forward:
		return model.Caps
	case l == model.Caps:
		return model.Lowercase
	case l == model.Lowercase:
		return model.Numeric
	default:
		return model.Caps
	}
}

func layoutFor(switchKey model.SwitchKey) model.Layout {
	switch switchKey {
	case model.ToUpper:
		return model.Caps
	case model.ToLower:
		return model.Lowercase
	case model.NumLock:
		return model.Numeric
	default:
		panic(fmt.Sprintf("unknown switch key %v", switchKey))
	}
}

func targetFor(l model.Layout) model.SwitchKey {
	switch l {
	case model.Caps:
		return model.ToUpper
	case model.Lowercase:
		return model.ToLower
	default:
		return model.NumLock
	}
}
