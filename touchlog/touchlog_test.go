package touchlog_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dasdy/tapboard/gesture"
	"github.com/dasdy/tapboard/model"
	"github.com/dasdy/tapboard/touchlog"
	"github.com/dasdy/tapboard/touchlog/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	events []model.TouchEvent
	log    []string
	accept bool
}

func (h *recordingHandler) HandleTouch(ev model.TouchEvent) bool {
	h.events = append(h.events, ev)
	h.log = append(h.log, ev.Action.String())

	return h.accept
}

func linesOf(text string) <-chan string {
	return ports.ReadFile(strings.NewReader(text))
}

const recorded = `[00:00:00.100] <inf> booting
t: 100, pointer: 0, action: down, x: 10, y: 20
t: 150, pointer: 0, action: move, x: 12, y: 20
garbage t: 1, pointer: 0, action: twist, x: 1, y: 1
t: 900, pointer: 0, action: up, x: 12, y: 21
`

func TestReplay(t *testing.T) {
	t.Run("should count every kind of line", func(t *testing.T) {
		handler := &recordingHandler{accept: true}

		summary := touchlog.Replay(linesOf(recorded), gesture.NewManualScheduler(), handler, false)

		assert.Equal(t, touchlog.Summary{Lines: 5, Events: 3, Handled: 3, Skipped: 1, Malformed: 1}, summary)
		assert.Equal(t, []string{"down", "move", "up"}, handler.log)
	})

	t.Run("should not count rejected events as handled", func(t *testing.T) {
		handler := &recordingHandler{}

		summary := touchlog.Replay(linesOf(recorded), gesture.NewManualScheduler(), handler, true)

		assert.Equal(t, 3, summary.Events)
		assert.Equal(t, 0, summary.Handled)
	})

	t.Run("should fire timers due before each event", func(t *testing.T) {
		scheduler := gesture.NewManualScheduler()
		handler := &recordingHandler{accept: true}

		scheduler.PostAt(500*time.Millisecond, "timer", func() {
			handler.log = append(handler.log, "timer")
		})

		touchlog.Replay(linesOf(recorded), scheduler, handler, false)

		assert.Equal(t, []string{"down", "move", "timer", "up"}, handler.log)
		assert.Equal(t, 900*time.Millisecond, scheduler.Now())
	})

	t.Run("should not move time backwards", func(t *testing.T) {
		scheduler := gesture.NewManualScheduler()
		handler := &recordingHandler{accept: true}

		touchlog.Replay(linesOf(
			"t: 200, pointer: 0, action: down, x: 1, y: 1\n"+
				"t: 100, pointer: 0, action: up, x: 1, y: 1\n",
		), scheduler, handler, false)

		require.Len(t, handler.events, 2)
		assert.Equal(t, 200*time.Millisecond, handler.events[1].Time)
	})
}

func TestLive(t *testing.T) {
	t.Run("should stop when the input is closed", func(t *testing.T) {
		scheduler := gesture.NewLoopScheduler()
		defer scheduler.Close()

		handler := &recordingHandler{accept: true}

		summary := touchlog.Live(context.Background(), linesOf(recorded), scheduler, handler, false)

		assert.Equal(t, 3, summary.Handled)
		assert.Equal(t, []string{"down", "move", "up"}, handler.log)
	})

	t.Run("should stamp events with the receive time", func(t *testing.T) {
		scheduler := gesture.NewLoopScheduler()
		defer scheduler.Close()

		handler := &recordingHandler{accept: true}

		touchlog.Live(context.Background(), linesOf(recorded), scheduler, handler, false)

		require.Len(t, handler.events, 3)

		for _, ev := range handler.events {
			assert.Less(t, ev.Time, 100*time.Millisecond)
		}
	})

	t.Run("should run due tasks on the loop", func(t *testing.T) {
		scheduler := gesture.NewLoopScheduler()
		defer scheduler.Close()

		lines := make(chan string)
		ctx, cancel := context.WithCancel(context.Background())

		scheduler.PostAt(0, "timer", cancel)

		summary := touchlog.Live(ctx, lines, scheduler, &recordingHandler{}, false)

		assert.Equal(t, touchlog.Summary{}, summary)
	})

	t.Run("should stop when the context is done", func(t *testing.T) {
		scheduler := gesture.NewLoopScheduler()
		defer scheduler.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		summary := touchlog.Live(ctx, make(chan string), scheduler, &recordingHandler{}, false)

		assert.Equal(t, 0, summary.Lines)
	})
}
