package keyboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/dasdy/tapboard/gesture"
	"github.com/dasdy/tapboard/layout"
	"github.com/dasdy/tapboard/mode"
	"github.com/dasdy/tapboard/model"
)

// DefaultToleranceFraction allows a press to wander 40% of a key before it stops being stationary.
const DefaultToleranceFraction = 0.4

type Config struct {
	// Gesture.TouchTolerance of 0 derives the tolerance from the key pitch.
	Gesture           gesture.Config
	ToleranceFraction float64
	Cycle             mode.Cycle
	VibrateDuration   time.Duration
}

func (c Config) derivesTolerance() bool {
	return c.Gesture.TouchTolerance == 0
}

func (c Config) Validate() error {
	var errs []error

	if err := c.Gesture.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.derivesTolerance() && (c.ToleranceFraction <= 0 || c.ToleranceFraction > 1) {
		errs = append(errs, fmt.Errorf("tolerance fraction must be in (0, 1], got %v", c.ToleranceFraction))
	}

	if c.VibrateDuration < 0 {
		errs = append(errs, fmt.Errorf("vibrate duration must not be negative, got %v", c.VibrateDuration))
	}

	return errors.Join(errs...)
}

// Keyboard wires the pointer arbiter, the gesture classifier, the mode engine and the interpreter
// together. Everything except SetVibrateDuration must happen on one goroutine, the same one that
// runs the scheduler's tasks.
type Keyboard struct {
	cfg Config

	engine      *mode.Engine
	interpreter *Interpreter
	classifier  *gesture.Classifier
	arbiter     *gesture.Arbiter
	popup       *Popup
}

func New(
	cfg Config,
	keyboards layout.Keyboards,
	scheduler gesture.Scheduler,
	queue Queue,
	opts ...Option,
) (*Keyboard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid keyboard config: %w", err)
	}

	if err := keyboards.Validate(); err != nil {
		return nil, fmt.Errorf("invalid keyboards %q: %w", keyboards.Name, err)
	}

	k := &Keyboard{
		cfg:    cfg,
		engine: mode.New(keyboards, mode.WithCycle(cfg.Cycle)),
		popup:  NewPopup(),
	}

	opts = append([]Option{WithPopup(k.popup), WithVibrateDuration(cfg.VibrateDuration)}, opts...)
	k.interpreter = NewInterpreter(k.engine, queue, opts...)

	classifier, err := gesture.NewClassifier(cfg.Gesture, scheduler, k.interpreter)
	if err != nil {
		return nil, err
	}

	k.classifier = classifier
	k.arbiter = gesture.NewArbiter(classifier)

	// Rows differ between layouts, so the key pitch does too
	k.engine.AddListener(mode.ListenerFunc(func(_ model.Layout, _ model.SwitchKey) {
		k.resize()
	}))

	return k, nil
}

// HandleTouch feeds one raw touch primitive. It reports whether the event was consumed.
func (k *Keyboard) HandleTouch(ev model.TouchEvent) bool {
	return k.arbiter.Handle(ev)
}

func (k *Keyboard) SetSize(width, height float64) {
	k.interpreter.SetSize(width, height)
	k.resize()
}

func (k *Keyboard) resize() {
	geometry := k.interpreter.Geometry()
	width, height := geometry.Size()
	rows := geometry.Rows()

	pitch := layout.TouchTolerance(rows, width, height, 1)
	k.popup.Resize(pitch, pitch, width)

	if k.cfg.derivesTolerance() {
		k.classifier.SetTouchTolerance(layout.TouchTolerance(rows, width, height, k.cfg.ToleranceFraction))
	}
}

func (k *Keyboard) StartInput(capsMode, textField bool) {
	k.interpreter.StartInput(capsMode, textField)
}

func (k *Keyboard) SetNoEnterAction(noEnterAction bool) {
	k.interpreter.SetNoEnterAction(noEnterAction)
}

func (k *Keyboard) SetEditor(editor Editor) {
	k.interpreter.SetEditor(editor)
}

// SetVibrateDuration may be called from any goroutine.
func (k *Keyboard) SetVibrateDuration(d time.Duration) {
	k.interpreter.SetVibrateDuration(d)
}

func (k *Keyboard) Engine() *mode.Engine {
	return k.engine
}

func (k *Keyboard) Geometry() *layout.Geometry {
	return k.interpreter.Geometry()
}

func (k *Keyboard) Popup() *Popup {
	return k.popup
}

func (k *Keyboard) Classifier() *gesture.Classifier {
	return k.classifier
}
