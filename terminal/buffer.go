package terminal

import (
	"sync"
)

// Buffer is the text being typed into. The cursor is always at the end; the selection, if any,
// is a suffix of the text. Editor operations arrive from the executor goroutine while the screen is
// drawn from the event loop, so every method locks.
type Buffer struct {
	lock     sync.Mutex
	text     []rune
	selected int
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) CommitText(text string) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.dropSelection()
	b.text = append(b.text, []rune(text)...)
}

func (b *Buffer) DeleteBackward(n int) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.selected = 0
	b.text = b.text[:len(b.text)-min(n, len(b.text))]
}

func (b *Buffer) SelectedText() string {
	b.lock.Lock()
	defer b.lock.Unlock()

	return string(b.text[len(b.text)-b.selected:])
}

func (b *Buffer) TextBeforeCursor(n int) string {
	b.lock.Lock()
	defer b.lock.Unlock()

	before := b.text[:len(b.text)-b.selected]

	return string(before[len(before)-min(n, len(before)):])
}

// PerformEditorAction ends the line.
func (b *Buffer) PerformEditorAction() {
	b.CommitText("\n")
}

// Select marks the last n runes as selected.
func (b *Buffer) Select(n int) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.selected = max(0, min(n, len(b.text)))
}

func (b *Buffer) SelectAll() {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.selected = len(b.text)
}

// Snapshot returns the text and how many runes at its end are selected.
func (b *Buffer) Snapshot() (string, int) {
	b.lock.Lock()
	defer b.lock.Unlock()

	return string(b.text), b.selected
}

func (b *Buffer) String() string {
	text, _ := b.Snapshot()

	return text
}

func (b *Buffer) dropSelection() {
	b.text = b.text[:len(b.text)-b.selected]
	b.selected = 0
}
