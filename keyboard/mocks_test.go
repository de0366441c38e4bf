package keyboard_test

import (
	"time"

	"github.com/dasdy/tapboard/keyboard"
	"github.com/dasdy/tapboard/model"
)

type mockEditor struct {
	text     []rune
	selected string
	actions  int
}

func (e *mockEditor) CommitText(text string) {
	e.selected = ""
	e.text = append(e.text, []rune(text)...)
}

func (e *mockEditor) DeleteBackward(n int) {
	n = min(n, len(e.text))
	e.text = e.text[:len(e.text)-n]
}

func (e *mockEditor) SelectedText() string {
	return e.selected
}

func (e *mockEditor) TextBeforeCursor(n int) string {
	from := max(len(e.text)-n, 0)

	return string(e.text[from:])
}

func (e *mockEditor) PerformEditorAction() {
	e.actions++
}

func (e *mockEditor) String() string {
	return string(e.text)
}

type mockVibrator struct {
	durations []time.Duration
}

func (v *mockVibrator) Vibrate(d time.Duration) {
	v.durations = append(v.durations, d)
}

type mockFeedback struct {
	shown   int
	updates int
	closed  int
}

func (f *mockFeedback) Show(_, _ float64)   { f.shown++ }
func (f *mockFeedback) Update(_, _ float64) { f.updates++ }
func (f *mockFeedback) Close()              { f.closed++ }

type tracked struct {
	Char   rune
	Layout model.Layout
}

type mockStats struct {
	tracked []tracked
}

func (s *mockStats) Track(char rune, layout model.Layout) {
	s.tracked = append(s.tracked, tracked{char, layout})
}

// busyQueue pretends the editor is lagging behind: nothing ever runs.
type busyQueue struct {
	names []string
}

func (q *busyQueue) Enqueue(name string, _ func(timer *keyboard.Timer)) {
	q.names = append(q.names, name)
}

func (q *busyQueue) IsEmpty() bool {
	return len(q.names) == 0
}
