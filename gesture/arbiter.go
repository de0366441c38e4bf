package gesture

import (
	"log/slog"

	"github.com/dasdy/tapboard/model"
)

// Arbiter forwards the touches of a single pointer to a Classifier. The most recent pointer to go
// down wins; the pointer it displaces gets a synthetic up so that its gesture still resolves.
type Arbiter struct {
	classifier *Classifier

	tracking  bool
	trackedID int
	lastX     float64
	lastY     float64
}

func NewArbiter(classifier *Classifier) *Arbiter {
	return &Arbiter{classifier: classifier}
}

// Tracked returns the pointer currently being followed.
func (a *Arbiter) Tracked() (int, bool) {
	return a.trackedID, a.tracking
}

// Handle reports whether the event was consumed.
func (a *Arbiter) Handle(ev model.TouchEvent) bool {
	action := ev.Action

	// These really mean the same thing, treat them as such
	switch action {
	case model.ActionPointerDown:
		action = model.ActionDown
	case model.ActionPointerUp:
		action = model.ActionUp
	}

	switch {
	case !a.tracking:
		if action != model.ActionDown {
			// We only want new presses
			return false
		}

		a.track(ev.PointerID)
	case ev.PointerID != a.trackedID:
		if action != model.ActionDown {
			// We don't care what happens to other pointers unless they go down
			return false
		}

		slog.DebugContext(logCtx, "Pointer displaced",
			"displaced", a.trackedID,
			"by", ev.PointerID,
			"x", a.lastX,
			"y", a.lastY)

		// Fake an up for the current pointer, and continue with the new one
		a.classifier.Up(a.lastX, a.lastY, ev.Time)
		a.track(ev.PointerID)
	}

	a.lastX = ev.X
	a.lastY = ev.Y

	handled := a.classifier.Handle(action, ev.X, ev.Y, ev.Time)

	if action == model.ActionUp {
		a.tracking = false
	}

	return handled
}

func (a *Arbiter) track(pointerID int) {
	a.tracking = true
	a.trackedID = pointerID
}
