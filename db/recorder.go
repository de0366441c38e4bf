package db

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dasdy/tapboard/model"
)

const recorderBuffer = 256

// Recorder stores committed characters off the caller's goroutine. Commits arriving while the
// buffer is full are dropped.
type Recorder struct {
	storage Storage
	tracker Tracker
	verbose bool

	events chan model.CommitEvent
	wg     sync.WaitGroup
	once   sync.Once
}

// NewRecorder starts the storing worker. tracker may be nil.
func NewRecorder(storage Storage, tracker Tracker, verbose bool) *Recorder {
	r := &Recorder{
		storage: storage,
		tracker: tracker,
		verbose: verbose,
		events:  make(chan model.CommitEvent, recorderBuffer),
	}

	r.wg.Add(1)

	go r.run()

	return r
}

func (r *Recorder) Track(char rune, layout model.Layout) {
	select {
	case r.events <- model.CommitEvent{Char: char, Layout: layout, Timestamp: time.Now()}:
	default:
		slog.Warn("Statistics buffer full, dropping commit", "char", string(char))
	}
}

// Close stores what is buffered and stops the worker. Track must not be called afterwards.
func (r *Recorder) Close() {
	r.once.Do(func() {
		close(r.events)
		r.wg.Wait()
	})
}

func (r *Recorder) run() {
	defer r.wg.Done()

	for event := range r.events {
		if err := r.storage.Store(&event); err != nil {
			slog.Error("Could not store commit", "error", err)
		}

		if r.tracker != nil {
			r.tracker.HandleCharNow(event.Char, r.verbose)
		}
	}
}
