package gesture_test

import (
	"testing"
	"time"

	"github.com/dasdy/tapboard/gesture"
	"github.com/dasdy/tapboard/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArbiter(t *testing.T) (*gesture.Arbiter, *gesture.ManualScheduler, *recorder) {
	t.Helper()

	f := newFixture(t)

	return gesture.NewArbiter(f.classifier), f.scheduler, f.recorder
}

func touch(pointer int, action model.TouchAction, x, y float64, at time.Duration) model.TouchEvent {
	return model.TouchEvent{PointerID: pointer, Action: action, X: x, Y: y, Time: at}
}

func TestArbiterIdle(t *testing.T) {
	for _, action := range []model.TouchAction{model.ActionMove, model.ActionUp, model.ActionPointerUp} {
		t.Run("should ignore "+action.String()+" while nothing is tracked", func(t *testing.T) {
			arbiter, _, rec := newArbiter(t)

			assert.False(t, arbiter.Handle(touch(0, action, 10, 10, start)))
			assert.Empty(t, rec.events)

			_, tracking := arbiter.Tracked()
			assert.False(t, tracking)
		})
	}

	t.Run("should adopt a secondary down as a fresh press", func(t *testing.T) {
		arbiter, _, rec := newArbiter(t)

		assert.True(t, arbiter.Handle(touch(3, model.ActionPointerDown, 10, 10, start)))

		id, tracking := arbiter.Tracked()
		assert.True(t, tracking)
		assert.Equal(t, 3, id)
		assert.Equal(t, []string{"down"}, rec.names())
	})
}

func TestArbiterSinglePointer(t *testing.T) {
	arbiter, scheduler, rec := newArbiter(t)

	scheduler.AdvanceTo(start)
	assert.True(t, arbiter.Handle(touch(0, model.ActionDown, 10, 10, start)))
	assert.True(t, arbiter.Handle(touch(0, model.ActionMove, 12, 11, start+20*time.Millisecond)))
	assert.True(t, arbiter.Handle(touch(0, model.ActionUp, 12, 11, start+40*time.Millisecond)))

	assert.Equal(t, []string{"down", "move", "up", "tap"}, rec.names())

	_, tracking := arbiter.Tracked()
	assert.False(t, tracking)
}

func TestArbiterTwoFingers(t *testing.T) {
	t.Run("should resolve the displaced press before following the new one", func(t *testing.T) {
		arbiter, scheduler, rec := newArbiter(t)

		scheduler.AdvanceTo(start)
		arbiter.Handle(touch(0, model.ActionDown, 10, 10, start))

		scheduler.AdvanceTo(start + 50*time.Millisecond)
		assert.True(t, arbiter.Handle(touch(1, model.ActionPointerDown, 50, 50, start+50*time.Millisecond)))

		assert.Equal(t, []recorded{
			{Name: "down"},
			{Name: "up"},
			{Name: "tap", X: 10, Y: 10},
			{Name: "down"},
		}, rec.events)

		id, tracking := arbiter.Tracked()
		require.True(t, tracking)
		assert.Equal(t, 1, id)

		scheduler.AdvanceTo(start + 80*time.Millisecond)
		arbiter.Handle(touch(1, model.ActionUp, 50, 50, start+80*time.Millisecond))

		assert.Equal(t, recorded{Name: "tap", X: 50, Y: 50}, rec.events[len(rec.events)-1])
	})

	t.Run("should ignore the displaced pointer afterwards", func(t *testing.T) {
		arbiter, scheduler, rec := newArbiter(t)

		scheduler.AdvanceTo(start)
		arbiter.Handle(touch(0, model.ActionDown, 10, 10, start))
		arbiter.Handle(touch(1, model.ActionPointerDown, 50, 50, start+10*time.Millisecond))

		before := len(rec.events)

		assert.False(t, arbiter.Handle(touch(0, model.ActionMove, 300, 300, start+20*time.Millisecond)))
		assert.False(t, arbiter.Handle(touch(0, model.ActionPointerUp, 300, 300, start+30*time.Millisecond)))
		assert.Len(t, rec.events, before)

		id, _ := arbiter.Tracked()
		assert.Equal(t, 1, id)
	})

	t.Run("should turn a displaced swipe into a swipe from its last position", func(t *testing.T) {
		arbiter, scheduler, rec := newArbiter(t)

		scheduler.AdvanceTo(start)
		arbiter.Handle(touch(0, model.ActionDown, 10, 10, start))
		arbiter.Handle(touch(0, model.ActionMove, 90, 15, start+20*time.Millisecond))
		arbiter.Handle(touch(1, model.ActionPointerDown, 200, 200, start+30*time.Millisecond))

		assert.Contains(t, rec.events, recorded{Name: "swipe", X: 80, Y: 5})
	})

	t.Run("should release a displaced long press", func(t *testing.T) {
		arbiter, scheduler, rec := newArbiter(t)

		scheduler.AdvanceTo(start)
		arbiter.Handle(touch(0, model.ActionDown, 10, 10, start))

		scheduler.AdvanceTo(start + timeout + time.Millisecond)
		arbiter.Handle(touch(1, model.ActionPointerDown, 200, 200, start+timeout+time.Millisecond))

		assert.Equal(t,
			[]string{"down", "longPress", "hold", "up", "longPressUp", "down"},
			rec.names())
		assert.Equal(t, recorded{Name: "longPressUp", X: 10, Y: 10}, rec.events[4])

		// The first press's chains are gone, only the new press escalates
		scheduler.AdvanceTo(start + 10*timeout)
		assert.Equal(t, 2, rec.count("longPress"))
		assert.Equal(t, 1, rec.count("longLongPress"))
	})
}

// Classifier events only come from the tracked pointer, and every press resolves before the next
// one starts.
func TestArbiterRandomStreams(t *testing.T) {
	streams := [][]model.TouchEvent{
		{
			touch(0, model.ActionDown, 10, 10, 0),
			touch(1, model.ActionPointerDown, 20, 20, 10*time.Millisecond),
			touch(2, model.ActionPointerDown, 30, 30, 20*time.Millisecond),
			touch(1, model.ActionPointerUp, 20, 20, 30*time.Millisecond),
			touch(0, model.ActionPointerUp, 10, 10, 40*time.Millisecond),
			touch(2, model.ActionUp, 30, 30, 50*time.Millisecond),
		},
		{
			touch(5, model.ActionDown, 100, 100, 0),
			touch(5, model.ActionMove, 200, 100, 100*time.Millisecond),
			touch(6, model.ActionPointerDown, 10, 10, 2*timeout),
			touch(6, model.ActionMove, 11, 10, 2*timeout+10*time.Millisecond),
			touch(5, model.ActionMove, 0, 0, 2*timeout+20*time.Millisecond),
			touch(6, model.ActionUp, 11, 10, 2*timeout+30*time.Millisecond),
		},
	}

	for i, stream := range streams {
		arbiter, scheduler, rec := newArbiter(t)

		for _, ev := range stream {
			scheduler.AdvanceTo(ev.Time)
			arbiter.Handle(ev)
		}

		downs := 0
		terminals := 0

		for _, e := range rec.events {
			switch e.Name {
			case "down":
				downs++
				assert.Equal(t, downs-1, terminals, "stream %d: a press started before the previous one resolved", i)
			case "tap", "swipe", "longPressUp":
				terminals++
			}
		}

		assert.Equal(t, downs, terminals, "stream %d", i)

		_, tracking := arbiter.Tracked()
		assert.False(t, tracking, "stream %d", i)
	}
}
