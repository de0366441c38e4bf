package gesture

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/dasdy/tapboard/logging"
	"github.com/dasdy/tapboard/model"
)

// DefaultLongLongPressFactor places the long-long-press at three press timeouts after the start.
const DefaultLongLongPressFactor = 3

var logCtx = logging.PackageCtx("gesture")

// Config tunes the classifier. Both TouchTolerance and PressTimeout come from the host: the
// tolerance should follow the key pitch rather than a platform constant.
type Config struct {
	// TouchTolerance is how far (px, per axis) a press may move and still count as stationary.
	TouchTolerance float64
	// PressTimeout separates a tap from a long press, and spaces the hold repeats.
	PressTimeout time.Duration
	// LongLongPressFactor is in units of PressTimeout, counted from the start of the press.
	LongLongPressFactor int
}

func (c Config) withDefaults() Config {
	if c.LongLongPressFactor == 0 {
		c.LongLongPressFactor = DefaultLongLongPressFactor
	}

	return c
}

func (c Config) Validate() error {
	c = c.withDefaults()

	var errs []error

	if c.TouchTolerance < 0 || math.IsNaN(c.TouchTolerance) {
		errs = append(errs, fmt.Errorf("touch tolerance must not be negative, got %v", c.TouchTolerance))
	}

	if c.PressTimeout <= 0 {
		errs = append(errs, fmt.Errorf("press timeout must be positive, got %v", c.PressTimeout))
	}

	if c.LongLongPressFactor < 2 {
		errs = append(errs, fmt.Errorf("long-long-press factor must be at least 2, got %d", c.LongLongPressFactor))
	}

	return errors.Join(errs...)
}

// Session is the press currently being classified.
type Session struct {
	StartX, StartY           float64
	Start                    time.Duration
	MostRecentX, MostRecentY float64
	// Tolerance is the touch tolerance in force when the press started.
	Tolerance float64
	// LongPressing is set once the first long press has fired.
	LongPressing bool
	// Repetitions counts the holds fired so far.
	Repetitions int

	generation uint64
}

// Classifier recognizes gestures from one pointer. It is not safe for concurrent use: feed it and
// run its scheduler's tasks from a single goroutine.
type Classifier struct {
	cfg       Config
	scheduler Scheduler
	listener  Listener

	session    *Session
	generation uint64
}

func NewClassifier(cfg Config, scheduler Scheduler, listener Listener) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gesture config: %w", err)
	}

	return &Classifier{
		cfg:       cfg.withDefaults(),
		scheduler: scheduler,
		listener:  listener,
	}, nil
}

// Session returns a copy of the live session, if any.
func (c *Classifier) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}

	return *c.session, true
}

// SetTouchTolerance changes the tolerance for presses that start after the call. A live press
// keeps the tolerance it started with.
func (c *Classifier) SetTouchTolerance(tolerance float64) {
	c.cfg.TouchTolerance = tolerance
}

// Handle dispatches one already arbitrated primitive. Secondary pointer actions count as their
// primary counterparts.
func (c *Classifier) Handle(action model.TouchAction, x, y float64, t time.Duration) bool {
	switch action {
	case model.ActionDown, model.ActionPointerDown:
		c.Down(x, y, t)

		return true
	case model.ActionMove:
		return c.Move(x, y)
	case model.ActionUp, model.ActionPointerUp:
		return c.Up(x, y, t)
	default:
		slog.InfoContext(logCtx, "Ignoring event", "action", action)

		return false
	}
}

func (c *Classifier) Down(x, y float64, t time.Duration) {
	if c.session != nil {
		// The previous press never got an up, forget about it
		c.reset()
	}

	c.listener.OnDown()

	c.generation++
	s := &Session{
		StartX:      x,
		StartY:      y,
		Start:       t,
		MostRecentX: x,
		MostRecentY: y,
		Tolerance:   c.cfg.TouchTolerance,
		generation:  c.generation,
	}
	c.session = s

	c.scheduler.PostAt(t+c.cfg.PressTimeout, s, func() { c.checkLongPress(s) })
	c.scheduler.PostAt(t+c.cfg.PressTimeout, s, func() { c.checkHold(s) })
}

func (c *Classifier) Move(x, y float64) bool {
	s := c.session
	if s == nil {
		return false
	}

	c.listener.OnMove(x, y)

	s.MostRecentX = x
	s.MostRecentY = y

	return true
}

func (c *Classifier) Up(x, y float64, t time.Duration) bool {
	c.listener.OnUp()

	s := c.session
	if s == nil {
		slog.WarnContext(logCtx, "Gesture ended without a start", "x", x, "y", y, "t", t)

		return false
	}

	dx := x - s.StartX
	dy := y - s.StartY
	within := math.Abs(dx) <= s.Tolerance && math.Abs(dy) <= s.Tolerance

	switch {
	case t-s.Start < c.cfg.PressTimeout && within:
		// Close enough, quick enough
		c.reset()
		c.listener.OnSingleTap(s.StartX, s.StartY)
	case !s.LongPressing && !within:
		c.reset()
		c.listener.OnSwipe(dx, dy)
	case s.LongPressing:
		c.reset()
		c.listener.OnLongPressUp(x, y)
	default:
		slog.WarnContext(logCtx, "Gesture ended but we don't know how",
			"start", fmt.Sprintf("(%v, %v)", s.StartX, s.StartY),
			"mostRecent", fmt.Sprintf("(%v, %v)", s.MostRecentX, s.MostRecentY),
			"end", fmt.Sprintf("(%v, %v)", x, y),
			"age", t-s.Start,
			"repetitions", s.Repetitions,
			"longPressing", s.LongPressing)

		c.reset()

		return false
	}

	return true
}

// reset drops the session. Checks already handed to the scheduler are canceled, and any that
// slipped through see a newer generation and do nothing.
func (c *Classifier) reset() {
	if c.session == nil {
		return
	}

	c.scheduler.Cancel(c.session)
	c.session = nil
	c.generation++
}

func (c *Classifier) isCurrent(s *Session) bool {
	return c.session == s && s.generation == c.generation
}

func movedTooFar(s *Session) bool {
	return math.Abs(s.MostRecentX-s.StartX) > s.Tolerance ||
		math.Abs(s.MostRecentY-s.StartY) > s.Tolerance
}

func (c *Classifier) checkLongPress(s *Session) {
	if !c.isCurrent(s) {
		return
	}

	if movedTooFar(s) {
		// We moved too much for a long press, never mind
		return
	}

	if s.LongPressing {
		c.listener.OnLongLongPress(s.MostRecentX, s.MostRecentY)

		return
	}

	s.LongPressing = true
	c.listener.OnLongPress(s.MostRecentX, s.MostRecentY)

	if !c.isCurrent(s) {
		return
	}

	at := s.Start + time.Duration(c.cfg.LongLongPressFactor)*c.cfg.PressTimeout
	c.scheduler.PostAt(at, s, func() { c.checkLongPress(s) })
}

func (c *Classifier) checkHold(s *Session) {
	if !c.isCurrent(s) {
		return
	}

	if movedTooFar(s) {
		// We moved too much for a hold, never mind
		return
	}

	c.listener.OnHold(s.MostRecentX, s.MostRecentY)
	s.Repetitions++

	if !c.isCurrent(s) {
		return
	}

	at := s.Start + time.Duration(s.Repetitions+1)*c.cfg.PressTimeout
	c.scheduler.PostAt(at, s, func() { c.checkHold(s) })
}
