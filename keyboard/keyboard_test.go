package keyboard_test

import (
	"sync"
	"testing"
	"time"

	"github.com/dasdy/tapboard/gesture"
	"github.com/dasdy/tapboard/keyboard"
	"github.com/dasdy/tapboard/layout"
	"github.com/dasdy/tapboard/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pressTimeout = 300 * time.Millisecond

func newKeyboard(t *testing.T, cfg keyboard.Config) (*keyboard.Keyboard, *gesture.ManualScheduler, *mockEditor) {
	t.Helper()

	scheduler := gesture.NewManualScheduler()
	editor := &mockEditor{}

	k, err := keyboard.New(cfg, layout.Default(), scheduler, keyboard.InlineQueue{}, keyboard.WithEditor(editor))
	require.NoError(t, err)

	// 11 keys of 100px on the widest row, 3 rows of 100px
	k.SetSize(1100, 300)

	return k, scheduler, editor
}

func defaultConfig() keyboard.Config {
	return keyboard.Config{
		Gesture:           gesture.Config{PressTimeout: pressTimeout},
		ToleranceFraction: keyboard.DefaultToleranceFraction,
	}
}

type player struct {
	k         *keyboard.Keyboard
	scheduler *gesture.ManualScheduler
}

func (p player) play(events ...model.TouchEvent) {
	for _, ev := range events {
		p.scheduler.AdvanceTo(ev.Time)
		p.k.HandleTouch(ev)
	}
}

func ev(action model.TouchAction, x, y float64, ms int) model.TouchEvent {
	return model.TouchEvent{Action: action, X: x, Y: y, Time: time.Duration(ms) * time.Millisecond}
}

func TestKeyboardConfig(t *testing.T) {
	cases := []struct {
		name  string
		cfg   keyboard.Config
		valid bool
	}{
		{"derived tolerance", defaultConfig(), true},
		{"fixed tolerance", keyboard.Config{Gesture: gesture.Config{TouchTolerance: 8, PressTimeout: pressTimeout}}, true},
		{"derived without fraction", keyboard.Config{Gesture: gesture.Config{PressTimeout: pressTimeout}}, false},
		{"fraction above one", keyboard.Config{Gesture: gesture.Config{PressTimeout: pressTimeout}, ToleranceFraction: 2}, false},
		{"no timeout", keyboard.Config{ToleranceFraction: 0.5}, false},
		{
			"negative vibration",
			keyboard.Config{Gesture: gesture.Config{PressTimeout: pressTimeout}, ToleranceFraction: 0.5, VibrateDuration: -1},
			false,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := keyboard.New(c.cfg, layout.Default(), gesture.NewManualScheduler(), keyboard.InlineQueue{})
			if c.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}

	t.Run("should reject keyboards using reserved glyphs", func(t *testing.T) {
		kb := layout.Default()
		kb.Numeric = []string{"12⌫"}

		_, err := keyboard.New(defaultConfig(), kb, gesture.NewManualScheduler(), keyboard.InlineQueue{})
		assert.ErrorIs(t, err, layout.ErrReservedGlyph)
	})
}

func TestKeyboardTyping(t *testing.T) {
	t.Run("should type a word from touches", func(t *testing.T) {
		k, scheduler, editor := newKeyboard(t, defaultConfig())
		p := player{k, scheduler}

		// H, then lowercase e, j
		p.play(
			ev(model.ActionDown, 550, 150, 0), ev(model.ActionUp, 552, 151, 80),
			ev(model.ActionDown, 250, 50, 200), ev(model.ActionUp, 250, 50, 260),
			ev(model.ActionDown, 650, 150, 400), ev(model.ActionUp, 650, 150, 450),
		)

		assert.Equal(t, "Hej", editor.String())
	})

	t.Run("should derive the tolerance from the key pitch", func(t *testing.T) {
		k, scheduler, editor := newKeyboard(t, defaultConfig())
		p := player{k, scheduler}

		// 40% of a 100px key
		p.play(ev(model.ActionDown, 50, 50, 0), ev(model.ActionUp, 85, 50, 50))
		assert.Equal(t, "Q", editor.String())

		p.play(ev(model.ActionDown, 50, 50, 100), ev(model.ActionUp, 95, 50, 150))
		assert.Equal(t, "Q ", editor.String())
	})

	t.Run("should keep a fixed tolerance", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Gesture.TouchTolerance = 5

		k, scheduler, editor := newKeyboard(t, cfg)
		p := player{k, scheduler}

		p.play(ev(model.ActionDown, 50, 50, 0), ev(model.ActionUp, 60, 50, 50))

		assert.Equal(t, " ", editor.String())
	})

	t.Run("should repeat word deletion while backspace is held", func(t *testing.T) {
		k, scheduler, editor := newKeyboard(t, defaultConfig())
		editor.text = []rune("one two three")

		backspace, ok := k.Geometry().Locate(layout.Backspace)
		require.True(t, ok)

		p := player{k, scheduler}
		p.play(ev(model.ActionDown, backspace.X, backspace.Y, 0))

		scheduler.AdvanceTo(2 * pressTimeout)
		assert.Equal(t, "one ", editor.String())

		p.play(ev(model.ActionUp, backspace.X, backspace.Y, int(2*pressTimeout/time.Millisecond)+10))
		assert.Equal(t, "one ", editor.String())
		assert.Equal(t, model.Caps, k.Engine().Layout())
	})

	t.Run("should pick a popup key with a long long press", func(t *testing.T) {
		k, scheduler, editor := newKeyboard(t, defaultConfig())
		k.StartInput(false, true)

		e, ok := k.Geometry().Locate('e')
		require.True(t, ok)

		p := player{k, scheduler}
		p.play(ev(model.ActionDown, e.X, e.Y, 0))
		scheduler.AdvanceTo(3 * pressTimeout)

		require.True(t, k.Popup().IsShowing())
		assert.Equal(t, "éèëe", k.Popup().Keys())

		key, ok := k.Popup().Geometry().Locate('ë')
		require.True(t, ok)

		x0, y0 := k.Popup().Origin()
		p.play(
			ev(model.ActionMove, x0+key.X, y0+key.Y, 1000),
			ev(model.ActionUp, x0+key.X, y0+key.Y, 1010),
		)

		assert.Equal(t, "ë", editor.String())
	})

	t.Run("should keep the tolerance of a press across a layout change", func(t *testing.T) {
		keyboards := layout.Default()
		keyboards.Numeric = []string{"123", "456", "789"}

		scheduler := gesture.NewManualScheduler()
		k, err := keyboard.New(defaultConfig(), keyboards, scheduler, keyboard.InlineQueue{})
		require.NoError(t, err)

		// 40px on the caps keys, 80px once the long press brings up the wider numeric keys
		k.SetSize(1100, 600)

		e, ok := k.Geometry().Locate('E')
		require.True(t, ok)

		p := player{k, scheduler}
		p.play(ev(model.ActionDown, e.X, e.Y, 0))
		scheduler.AdvanceTo(pressTimeout)
		require.Equal(t, model.Numeric, k.Engine().Layout())

		p.play(ev(model.ActionMove, e.X+60, e.Y, 400))
		scheduler.AdvanceTo(950 * time.Millisecond)

		assert.False(t, k.Popup().IsShowing())
	})

	t.Run("should resolve a displaced press before the next one", func(t *testing.T) {
		k, scheduler, editor := newKeyboard(t, defaultConfig())
		p := player{k, scheduler}

		p.play(
			model.TouchEvent{PointerID: 0, Action: model.ActionDown, X: 50, Y: 50, Time: 0},
			model.TouchEvent{PointerID: 1, Action: model.ActionPointerDown, X: 150, Y: 150, Time: 30 * time.Millisecond},
			model.TouchEvent{PointerID: 0, Action: model.ActionPointerUp, X: 50, Y: 50, Time: 40 * time.Millisecond},
			model.TouchEvent{PointerID: 1, Action: model.ActionUp, X: 150, Y: 150, Time: 60 * time.Millisecond},
		)

		assert.Equal(t, "Qs", editor.String())
	})
}

func TestExecutor(t *testing.T) {
	t.Run("should run operations in order", func(t *testing.T) {
		e := keyboard.NewExecutor()

		var (
			lock sync.Mutex
			ran  []int
		)

		for i := range 50 {
			e.Enqueue("op", func(timer *keyboard.Timer) {
				timer.AddLeg("append")
				lock.Lock()
				ran = append(ran, i)
				lock.Unlock()
			})
		}

		e.Close()

		require.Len(t, ran, 50)

		for i, v := range ran {
			assert.Equal(t, i, v)
		}

		assert.True(t, e.IsEmpty())
	})

	t.Run("should report a backlog", func(t *testing.T) {
		e := keyboard.NewExecutor()

		release := make(chan struct{})
		started := make(chan struct{})

		e.Enqueue("blocker", func(_ *keyboard.Timer) {
			close(started)
			<-release
		})
		<-started

		assert.True(t, e.IsEmpty(), "a running operation is not a backlog")

		e.Enqueue("waiting", func(_ *keyboard.Timer) {})
		assert.False(t, e.IsEmpty())

		close(release)
		e.Close()
		assert.True(t, e.IsEmpty())
	})

	t.Run("should drop operations after close", func(t *testing.T) {
		e := keyboard.NewExecutor()
		e.Close()

		ran := false
		e.Enqueue("late", func(_ *keyboard.Timer) { ran = true })

		assert.False(t, ran)
		assert.True(t, e.IsEmpty())
	})
}

func TestPopup(t *testing.T) {
	t.Run("should stay inside the keyboard", func(t *testing.T) {
		p := keyboard.NewPopup()
		p.Resize(100, 80, 1000)

		p.Show('a', "@áàa", 900, 40)

		x0, y0 := p.Origin()
		assert.InDelta(t, 600.0, x0, 1e-9)
		assert.InDelta(t, 40.0, y0, 1e-9)
		assert.Equal(t, 'a', p.Base())

		assert.Equal(t, '@', p.KeyAt(610, 60))
		assert.Equal(t, 'a', p.KeyAt(990, 60))
	})

	t.Run("should have no keys when hidden", func(t *testing.T) {
		p := keyboard.NewPopup()
		p.Resize(100, 80, 1000)

		assert.Equal(t, layout.NoKey, p.KeyAt(10, 10))

		p.Show('e', "éèëe", 0, 0)
		p.Dismiss()

		assert.False(t, p.IsShowing())
		assert.Equal(t, layout.NoKey, p.KeyAt(10, 10))
	})
}
