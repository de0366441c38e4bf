package terminal_test

import (
	"testing"
	"time"

	"github.com/dasdy/tapboard/model"
	"github.com/dasdy/tapboard/terminal"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
)

func press(x, y int) *tcell.EventMouse {
	return tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone)
}

func release(x, y int) *tcell.EventMouse {
	return tcell.NewEventMouse(x, y, tcell.ButtonNone, tcell.ModNone)
}

func TestMouseMapper(t *testing.T) {
	t.Run("should map a press, drag and release", func(t *testing.T) {
		m := terminal.MouseMapper{Top: 4}

		down, ok := m.Map(press(2, 5), 10*time.Millisecond)
		assert.True(t, ok)
		assert.Equal(t, model.TouchEvent{Action: model.ActionDown, X: 2.5, Y: 1.5, Time: 10 * time.Millisecond}, down)
		assert.True(t, m.IsDown())

		move, ok := m.Map(press(3, 5), 20*time.Millisecond)
		assert.True(t, ok)
		assert.Equal(t, model.ActionMove, move.Action)
		assert.InDelta(t, 3.5, move.X, 1e-9)

		up, ok := m.Map(release(3, 5), 30*time.Millisecond)
		assert.True(t, ok)
		assert.Equal(t, model.ActionUp, up.Action)
		assert.False(t, m.IsDown())
	})

	t.Run("should ignore presses above the keyboard", func(t *testing.T) {
		m := terminal.MouseMapper{Top: 4}

		_, ok := m.Map(press(2, 3), 0)
		assert.False(t, ok)
		assert.False(t, m.IsDown())
	})

	t.Run("should follow a held pointer above the keyboard", func(t *testing.T) {
		m := terminal.MouseMapper{Top: 4}

		_, ok := m.Map(press(2, 4), 0)
		assert.True(t, ok)

		move, ok := m.Map(press(2, 1), 0)
		assert.True(t, ok)
		assert.InDelta(t, -2.5, move.Y, 1e-9)
	})

	t.Run("should drop repeated positions and stray releases", func(t *testing.T) {
		m := terminal.MouseMapper{}

		_, ok := m.Map(release(1, 1), 0)
		assert.False(t, ok)

		_, ok = m.Map(press(1, 1), 0)
		assert.True(t, ok)

		_, ok = m.Map(press(1, 1), 0)
		assert.False(t, ok)
	})
}
