/*
Package gesture turns a stream of touch primitives into keyboard gestures.

The Arbiter picks one pointer out of possibly several simultaneous touches and feeds a single linear
stream to the Classifier, which reports taps, swipes, long presses and held repeats to a Listener.
Deferred checks run on a Scheduler supplied by the host.
*/
package gesture

// Listener receives the gestures recognized by a Classifier.
type Listener interface {
	// OnDown is reported when a press starts.
	OnDown()
	// OnMove is reported for every move of the tracked pointer.
	OnMove(x, y float64)
	// OnUp is reported first when the tracked pointer goes up, before any terminal gesture.
	OnUp()

	// OnSingleTap carries the start coordinate of the press.
	OnSingleTap(x, y float64)
	// OnSwipe carries the displacement between press and release.
	OnSwipe(dx, dy float64)
	OnLongPress(x, y float64)
	OnLongLongPress(x, y float64)
	// OnLongPressUp carries the release coordinate.
	OnLongPressUp(x, y float64)
	// OnHold repeats for as long as the press stays still.
	OnHold(x, y float64)
}

// ListenerAdapter implements every Listener method as a no-op. Embed it to handle only some
// gestures.
type ListenerAdapter struct{}

func (ListenerAdapter) OnDown()                      {}
func (ListenerAdapter) OnMove(_, _ float64)          {}
func (ListenerAdapter) OnUp()                        {}
func (ListenerAdapter) OnSingleTap(_, _ float64)     {}
func (ListenerAdapter) OnSwipe(_, _ float64)         {}
func (ListenerAdapter) OnLongPress(_, _ float64)     {}
func (ListenerAdapter) OnLongLongPress(_, _ float64) {}
func (ListenerAdapter) OnLongPressUp(_, _ float64)   {}
func (ListenerAdapter) OnHold(_, _ float64)          {}

var _ Listener = ListenerAdapter{}
