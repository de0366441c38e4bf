package keyboard

import (
	"time"

	"github.com/dasdy/tapboard/model"
)

// Editor is the text field being typed into. Its methods are only ever called from the Queue
// worker, never from the gesture loop.
type Editor interface {
	// CommitText inserts text at the cursor, replacing any selection.
	CommitText(text string)
	// DeleteBackward removes n characters before the cursor.
	DeleteBackward(n int)
	SelectedText() string
	// TextBeforeCursor returns up to n characters before the cursor.
	TextBeforeCursor(n int) string
	PerformEditorAction()
}

// PopupKeyboard shows the alternatives of a long-long-pressed key.
type PopupKeyboard interface {
	Show(base rune, keys string, x, y float64)
	IsShowing() bool
	// KeyAt returns the popup key closest to a point in keyboard coordinates.
	KeyAt(x, y float64) rune
	Dismiss()
}

type Vibrator interface {
	Vibrate(d time.Duration)
}

// Feedback is the magnifying bubble following the finger.
type Feedback interface {
	Show(x, y float64)
	Update(x, y float64)
	Close()
}

// StatsTracker counts committed characters.
type StatsTracker interface {
	Track(char rune, layout model.Layout)
}

type noopEditor struct{}

func (noopEditor) CommitText(_ string)           {}
func (noopEditor) DeleteBackward(_ int)          {}
func (noopEditor) SelectedText() string          { return "" }
func (noopEditor) TextBeforeCursor(_ int) string { return "" }
func (noopEditor) PerformEditorAction()          {}

type noopPopup struct{}

func (noopPopup) Show(_ rune, _ string, _, _ float64) {}
func (noopPopup) IsShowing() bool                     { return false }
func (noopPopup) KeyAt(_, _ float64) rune             { return 0 }
func (noopPopup) Dismiss()                            {}

type noopVibrator struct{}

func (noopVibrator) Vibrate(_ time.Duration) {}

type noopFeedback struct{}

func (noopFeedback) Show(_, _ float64)   {}
func (noopFeedback) Update(_, _ float64) {}
func (noopFeedback) Close()              {}

type noopStats struct{}

func (noopStats) Track(_ rune, _ model.Layout) {}
