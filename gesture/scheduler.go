package gesture

import (
	"slices"
	"sync"
	"time"
)

// Scheduler runs deferred checks. Times are offsets on the same monotonic timeline as touch event
// timestamps. Tasks posted with a token can all be dropped at once with Cancel(token).
type Scheduler interface {
	PostAt(at time.Duration, token any, fn func())
	Cancel(token any)
	Now() time.Duration
}

type task struct {
	at    time.Duration
	seq   uint64
	token any
	fn    func()
}

// ManualScheduler is a Scheduler on a virtual clock. Nothing runs until AdvanceTo is called, which
// makes it suitable for tests and for replaying recorded touch logs.
type ManualScheduler struct {
	now   time.Duration
	seq   uint64
	tasks []*task
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) PostAt(at time.Duration, token any, fn func()) {
	s.seq++
	s.tasks = append(s.tasks, &task{at: at, seq: s.seq, token: token, fn: fn})
}

func (s *ManualScheduler) Cancel(token any) {
	s.tasks = slices.DeleteFunc(s.tasks, func(t *task) bool {
		return t.token == token
	})
}

func (s *ManualScheduler) Now() time.Duration {
	return s.now
}

// Pending is the number of tasks that have not run yet.
func (s *ManualScheduler) Pending() int {
	return len(s.tasks)
}

// AdvanceTo runs every task due at or before t, earliest first and in posting order for equal
// times. Tasks posted while advancing run too if they are due. The clock never goes backwards.
func (s *ManualScheduler) AdvanceTo(t time.Duration) {
	for {
		next := s.nextDue(t)
		if next < 0 {
			break
		}

		due := s.tasks[next]
		s.tasks = slices.Delete(s.tasks, next, next+1)

		if due.at > s.now {
			s.now = due.at
		}

		due.fn()
	}

	if t > s.now {
		s.now = t
	}
}

// Advance moves the clock forward by d.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.AdvanceTo(s.now + d)
}

func (s *ManualScheduler) nextDue(t time.Duration) int {
	next := -1

	for i, candidate := range s.tasks {
		if candidate.at > t {
			continue
		}

		if next < 0 ||
			candidate.at < s.tasks[next].at ||
			(candidate.at == s.tasks[next].at && candidate.seq < s.tasks[next].seq) {
			next = i
		}
	}

	return next
}

type timerEntry struct {
	timer *time.Timer
	fn    func()
}

// LoopScheduler is a real-time Scheduler. Due tasks are not run on the timer goroutine; they are
// delivered on C() and the owner of the gesture state runs them from its event loop, so the
// classifier is only ever touched from one goroutine.
type LoopScheduler struct {
	epoch time.Time
	c     chan func()
	done  chan struct{}

	lock   sync.Mutex
	timers map[any][]*timerEntry
	closed bool
}

func NewLoopScheduler() *LoopScheduler {
	return &LoopScheduler{
		epoch:  time.Now(),
		c:      make(chan func(), 16),
		done:   make(chan struct{}),
		timers: make(map[any][]*timerEntry),
	}
}

// C delivers tasks that are due.
func (s *LoopScheduler) C() <-chan func() {
	return s.c
}

func (s *LoopScheduler) Now() time.Duration {
	return time.Since(s.epoch)
}

func (s *LoopScheduler) PostAt(at time.Duration, token any, fn func()) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return
	}

	delay := max(at-s.Now(), 0)

	entry := &timerEntry{fn: fn}
	entry.timer = time.AfterFunc(delay, func() {
		s.fire(token, entry)
	})

	s.timers[token] = append(s.timers[token], entry)
}

func (s *LoopScheduler) fire(token any, entry *timerEntry) {
	s.lock.Lock()

	entries := s.timers[token]
	idx := slices.Index(entries, entry)

	if idx < 0 || s.closed {
		// Canceled between the timer firing and us getting the lock
		s.lock.Unlock()

		return
	}

	entries = slices.Delete(entries, idx, idx+1)
	if len(entries) == 0 {
		delete(s.timers, token)
	} else {
		s.timers[token] = entries
	}

	s.lock.Unlock()

	// Nobody drains C() after Close
	select {
	case s.c <- entry.fn:
	case <-s.done:
	}
}

func (s *LoopScheduler) Cancel(token any) {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, entry := range s.timers[token] {
		entry.timer.Stop()
	}

	delete(s.timers, token)
}

// Close stops every pending timer and releases timers blocked on a full C(). Tasks already
// delivered on C() are left in the channel.
func (s *LoopScheduler) Close() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return
	}

	for token, entries := range s.timers {
		for _, entry := range entries {
			entry.timer.Stop()
		}

		delete(s.timers, token)
	}

	s.closed = true
	close(s.done)
}
