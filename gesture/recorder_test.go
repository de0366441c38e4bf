package gesture_test

import (
	"time"

	"github.com/dasdy/tapboard/gesture"
)

type recorded struct {
	Name string
	X, Y float64
}

// recorder is a hand-written Listener mock that remembers everything it was told, and when.
type recorder struct {
	clock  interface{ Now() time.Duration }
	events []recorded
	times  map[string][]time.Duration
}

func newRecorder(clock interface{ Now() time.Duration }) *recorder {
	return &recorder{clock: clock, times: make(map[string][]time.Duration)}
}

func (r *recorder) add(name string, x, y float64) {
	r.events = append(r.events, recorded{Name: name, X: x, Y: y})
	r.times[name] = append(r.times[name], r.clock.Now())
}

func (r *recorder) OnDown()                      { r.add("down", 0, 0) }
func (r *recorder) OnMove(x, y float64)          { r.add("move", x, y) }
func (r *recorder) OnUp()                        { r.add("up", 0, 0) }
func (r *recorder) OnSingleTap(x, y float64)     { r.add("tap", x, y) }
func (r *recorder) OnSwipe(dx, dy float64)       { r.add("swipe", dx, dy) }
func (r *recorder) OnLongPress(x, y float64)     { r.add("longPress", x, y) }
func (r *recorder) OnLongLongPress(x, y float64) { r.add("longLongPress", x, y) }
func (r *recorder) OnLongPressUp(x, y float64)   { r.add("longPressUp", x, y) }
func (r *recorder) OnHold(x, y float64)          { r.add("hold", x, y) }

func (r *recorder) count(name string) int {
	return len(r.times[name])
}

func (r *recorder) names() []string {
	names := make([]string, 0, len(r.events))
	for _, e := range r.events {
		names = append(names, e.Name)
	}

	return names
}

var _ gesture.Listener = (*recorder)(nil)

// leakyScheduler never drops anything on Cancel, so only the generation check can stop stale
// checks from firing.
type leakyScheduler struct {
	*gesture.ManualScheduler
}

func (leakyScheduler) Cancel(_ any) {}
