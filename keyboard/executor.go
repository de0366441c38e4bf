package keyboard

import (
	"log/slog"
	"sync"
	"time"
)

// Queue runs editor operations in order, away from the gesture loop.
type Queue interface {
	Enqueue(name string, op func(timer *Timer))
	// IsEmpty reports whether nothing is waiting to start. An operation that is already running does
	// not count.
	IsEmpty() bool
}

type job struct {
	name string
	op   func(timer *Timer)
}

// Executor is a Queue with a single worker goroutine and an unbounded backlog, so Enqueue never
// blocks.
type Executor struct {
	lock   sync.Mutex
	jobs   []job
	closed bool

	wake chan struct{}
	wg   sync.WaitGroup
}

func NewExecutor() *Executor {
	e := &Executor{
		wake: make(chan struct{}, 1),
	}

	e.wg.Add(1)

	go e.run()

	return e
}

func (e *Executor) Enqueue(name string, op func(timer *Timer)) {
	e.lock.Lock()

	if e.closed {
		e.lock.Unlock()
		slog.WarnContext(logCtx, "Executor closed, dropping operation", "op", name)

		return
	}

	e.jobs = append(e.jobs, job{name: name, op: op})
	e.lock.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Executor) IsEmpty() bool {
	e.lock.Lock()
	defer e.lock.Unlock()

	return len(e.jobs) == 0
}

// Close runs what is already queued, then stops the worker.
func (e *Executor) Close() {
	e.lock.Lock()
	e.closed = true
	e.lock.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}

	e.wg.Wait()
}

func (e *Executor) run() {
	defer e.wg.Done()

	for {
		e.lock.Lock()

		if len(e.jobs) == 0 {
			closed := e.closed
			e.lock.Unlock()

			if closed {
				return
			}

			<-e.wake

			continue
		}

		next := e.jobs[0]
		e.jobs = e.jobs[1:]
		e.lock.Unlock()

		runJob(next)
	}
}

func runJob(j job) {
	timer := NewTimer()
	j.op(timer)

	slog.DebugContext(logCtx, "Editor operation done", "op", j.name, "timing", timer)
}

// InlineQueue runs every operation right away on the caller's goroutine. Replays and tests use it
// to keep editor effects in step with the virtual clock.
type InlineQueue struct{}

func (InlineQueue) Enqueue(name string, op func(timer *Timer)) {
	runJob(job{name: name, op: op})
}

func (InlineQueue) IsEmpty() bool {
	return true
}

type leg struct {
	name string
	took time.Duration
}

// Timer splits the duration of an operation into named legs.
type Timer struct {
	start    time.Time
	legStart time.Time
	current  string
	legs     []leg
}

func NewTimer() *Timer {
	now := time.Now()

	return &Timer{start: now, legStart: now}
}

// AddLeg ends the running leg, if any, and starts a new one.
func (t *Timer) AddLeg(name string) {
	now := time.Now()

	if t.current != "" {
		t.legs = append(t.legs, leg{name: t.current, took: now.Sub(t.legStart)})
	}

	t.current = name
	t.legStart = now
}

func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

func (t *Timer) LogValue() slog.Value {
	attrs := []slog.Attr{slog.Duration("total", t.Elapsed())}

	for _, l := range t.legs {
		attrs = append(attrs, slog.Duration(l.name, l.took))
	}

	if t.current != "" {
		attrs = append(attrs, slog.Duration(t.current, time.Since(t.legStart)))
	}

	return slog.GroupValue(attrs...)
}
