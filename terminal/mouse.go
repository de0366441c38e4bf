package terminal

import (
	"time"

	"github.com/dasdy/tapboard/model"
	"github.com/gdamore/tcell/v2"
)

// MouseMapper turns the primary mouse button into a single touch pointer. Presses above Top are
// outside the keyboard and ignored; once down, the pointer is followed anywhere.
type MouseMapper struct {
	Top int

	down         bool
	lastX, lastY int
}

// Map converts ev, received at now, into a touch primitive in keyboard coordinates. Cells are one
// unit wide and tall, and a touch lands in the middle of its cell.
func (m *MouseMapper) Map(ev *tcell.EventMouse, now time.Duration) (model.TouchEvent, bool) {
	pressed := ev.Buttons()&tcell.Button1 != 0
	x, y := ev.Position()

	var action model.TouchAction

	switch {
	case pressed && !m.down:
		if y < m.Top {
			return model.TouchEvent{}, false
		}

		m.down = true
		action = model.ActionDown
	case pressed:
		if x == m.lastX && y == m.lastY {
			return model.TouchEvent{}, false
		}

		action = model.ActionMove
	case m.down:
		m.down = false
		action = model.ActionUp
	default:
		return model.TouchEvent{}, false
	}

	m.lastX, m.lastY = x, y

	return model.TouchEvent{
		Action: action,
		X:      float64(x) + 0.5,
		Y:      float64(y-m.Top) + 0.5,
		Time:   now,
	}, true
}

// IsDown reports whether the button is being held.
func (m *MouseMapper) IsDown() bool {
	return m.down
}
