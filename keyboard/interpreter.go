package keyboard

import (
	"log/slog"
	"math"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/dasdy/tapboard/gesture"
	"github.com/dasdy/tapboard/layout"
	"github.com/dasdy/tapboard/logging"
	"github.com/dasdy/tapboard/mode"
	"github.com/dasdy/tapboard/model"
)

// deleteLookback is how much text before the cursor is inspected to find the word to delete.
const deleteLookback = 22

var logCtx = logging.PackageCtx("keyboard")

type Option func(*Interpreter)

func WithEditor(editor Editor) Option {
	return func(i *Interpreter) {
		if editor != nil {
			i.editor = editor
		}
	}
}

func WithPopup(popup PopupKeyboard) Option {
	return func(i *Interpreter) {
		if popup != nil {
			i.popup = popup
		}
	}
}

func WithVibrator(vibrator Vibrator) Option {
	return func(i *Interpreter) {
		if vibrator != nil {
			i.vibrator = vibrator
		}
	}
}

func WithFeedback(feedback Feedback) Option {
	return func(i *Interpreter) {
		if feedback != nil {
			i.feedback = feedback
		}
	}
}

func WithStats(stats StatsTracker) Option {
	return func(i *Interpreter) {
		if stats != nil {
			i.stats = stats
		}
	}
}

func WithVibrateDuration(d time.Duration) Option {
	return func(i *Interpreter) {
		i.vibrateDuration.Store(int64(d))
	}
}

// Interpreter turns gestures into key presses, mode changes and editor operations. Apart from
// SetVibrateDuration, it must be used from the goroutine that runs the gesture classifier.
type Interpreter struct {
	engine *mode.Engine
	queue  Queue

	editor   Editor
	popup    PopupKeyboard
	vibrator Vibrator
	feedback Feedback
	stats    StatsTracker

	vibrateDuration atomic.Int64

	width, height float64
	geometry      *layout.Geometry
	longPressKey  rune
	noEnterAction bool
}

var (
	_ gesture.Listener = (*Interpreter)(nil)
	_ mode.Listener    = (*Interpreter)(nil)
)

func NewInterpreter(engine *mode.Engine, queue Queue, opts ...Option) *Interpreter {
	i := &Interpreter{
		engine:   engine,
		queue:    queue,
		editor:   noopEditor{},
		popup:    noopPopup{},
		vibrator: noopVibrator{},
		feedback: noopFeedback{},
		stats:    noopStats{},
	}

	for _, opt := range opts {
		opt(i)
	}

	// Builds the first geometry
	engine.AddListener(i)

	return i
}

// SetEditor points the interpreter at another text field. Operations already queued keep the
// editor they were queued for.
func (i *Interpreter) SetEditor(editor Editor) {
	if editor == nil {
		editor = noopEditor{}
	}

	i.editor = editor
}

func (i *Interpreter) SetVibrateDuration(d time.Duration) {
	i.vibrateDuration.Store(int64(d))
}

func (i *Interpreter) VibrateDuration() time.Duration {
	return time.Duration(i.vibrateDuration.Load())
}

// SetSize rebuilds the key geometry for a new keyboard size.
func (i *Interpreter) SetSize(width, height float64) {
	i.width = width
	i.height = height
	i.rebuild(i.engine.Layout())
}

func (i *Interpreter) Geometry() *layout.Geometry {
	return i.geometry
}

// StartInput applies the hints of a newly focused text field.
func (i *Interpreter) StartInput(capsMode, textField bool) {
	i.engine.SetShifted(capsMode)

	if !textField {
		i.engine.SetNumeric()
	}
}

// SetNoEnterAction tells whether the focused field lacks an editor action. Down swipes then type a
// newline instead.
func (i *Interpreter) SetNoEnterAction(noEnterAction bool) {
	i.noEnterAction = noEnterAction
}

func (i *Interpreter) OnModeChange(l model.Layout, _ model.SwitchKey) {
	i.rebuild(l)
}

func (i *Interpreter) rebuild(l model.Layout) {
	i.geometry = layout.Build(i.engine.Keyboards().Rows(l), i.width, i.height)
}

func (i *Interpreter) OnDown() {
	i.vibrate()
}

func (i *Interpreter) OnMove(x, y float64) {
	i.feedback.Update(x, y)
}

func (i *Interpreter) OnUp() {
	i.feedback.Close()
}

func (i *Interpreter) OnSingleTap(x, y float64) {
	i.tap(i.geometry.Nearest(x, y))
}

func (i *Interpreter) OnSwipe(dx, dy float64) {
	switch {
	case dx > 0 && math.Abs(dy) <= dx:
		// Right swipe, enter space!
		i.keyTapped(' ')
	case dy > 0 && math.Abs(dx) <= dy:
		i.actionTapped()
	default:
		slog.DebugContext(logCtx, "Ignoring swipe", "dx", dx, "dy", dy)
	}
}

func (i *Interpreter) OnLongPress(x, y float64) {
	i.longPressKey = i.geometry.Nearest(x, y)
	if i.longPressKey == layout.Backspace {
		// We report repeats for delete, not long presses
		return
	}

	i.feedback.Show(x, y)
	i.engine.Register(mode.LongPress)
}

func (i *Interpreter) OnLongLongPress(x, y float64) {
	if i.longPressKey == layout.Backspace {
		return
	}

	keys := i.engine.Keyboards().Popup(i.longPressKey)
	if keys == "" {
		// No popup keys available for this keypress
		return
	}

	i.popup.Show(i.longPressKey, keys, x, y)
}

func (i *Interpreter) OnLongPressUp(x, y float64) {
	if i.popup.IsShowing() {
		key := i.popup.KeyAt(x, y)
		if key == layout.NoKey {
			i.popup.Dismiss()

			return
		}

		i.keyTapped(key)

		return
	}

	if i.geometry.Nearest(x, y) == layout.Backspace {
		// Releasing a held backspace, the repeats already did the work
		return
	}

	i.OnSingleTap(x, y)
}

func (i *Interpreter) OnHold(x, y float64) {
	if i.geometry.Nearest(x, y) != layout.Backspace {
		return
	}

	i.deleteHeld()
}

func (i *Interpreter) tap(key rune) {
	switch key {
	case layout.NoKey:
		slog.DebugContext(logCtx, "Tap outside of any key")
	case layout.Backspace:
		i.deleteTapped()
	case layout.SwitchMarker:
		i.engine.Register(mode.NextMode)
	default:
		i.keyTapped(key)
	}
}

func (i *Interpreter) keyTapped(key rune) {
	i.popup.Dismiss()

	editor := i.editor
	i.queue.Enqueue("commit char", func(_ *Timer) {
		editor.CommitText(string(key))
	})

	i.stats.Track(key, i.engine.Layout())
	i.engine.Register(mode.InsertChar)
}

func (i *Interpreter) deleteTapped() {
	editor := i.editor
	i.queue.Enqueue("delete char", func(timer *Timer) {
		timer.AddLeg("get selection")

		if editor.SelectedText() == "" {
			timer.AddLeg("backspace")
			editor.DeleteBackward(1)
		} else {
			timer.AddLeg("delete selection")
			editor.CommitText("")
		}
	})
}

func (i *Interpreter) deleteHeld() {
	i.feedback.Close()

	if !i.queue.IsEmpty() {
		// Don't pile up deletes while the editor is catching up
		return
	}

	editor := i.editor
	i.queue.Enqueue("delete word", func(timer *Timer) {
		timer.AddLeg("get selection")

		if editor.SelectedText() != "" {
			timer.AddLeg("delete selection")
			editor.CommitText("")

			return
		}

		timer.AddLeg("get preceding text")
		before := editor.TextBeforeCursor(deleteLookback)

		timer.AddLeg("delete word")
		editor.DeleteBackward(CountCharsToDelete(before))
	})

	i.vibrate()
}

func (i *Interpreter) actionTapped() {
	editor := i.editor

	if i.noEnterAction {
		i.queue.Enqueue("commit newline", func(_ *Timer) {
			editor.CommitText("\n")
		})
		i.engine.Register(mode.InsertChar)

		return
	}

	i.queue.Enqueue("editor action", func(_ *Timer) {
		editor.PerformEditorAction()
	})
}

func (i *Interpreter) vibrate() {
	if d := i.VibrateDuration(); d > 0 {
		i.vibrator.Vibrate(d)
	}
}

// CountCharsToDelete returns how many characters at the end of before make up the last word,
// including any non-alphanumeric characters trailing it.
func CountCharsToDelete(before string) int {
	runes := []rune(before)
	index := len(runes) - 1

	for index >= 0 && !isWordRune(runes[index]) {
		index--
	}

	for index >= 0 && isWordRune(runes[index]) {
		index--
	}

	return len(runes) - 1 - index
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
