package db

import (
	"cmp"
	"iter"
	"log/slog"
	"slices"
	"sync"

	"github.com/dasdy/tapboard/model"
	"github.com/schollz/progressbar/v3"
)

const noChar rune = -1

// NeighborCounter counts characters committed directly after each other.
type NeighborCounter struct {
	lastChar  rune
	counts    map[rune]map[rune]int
	stateLock sync.RWMutex
	ready     chan struct{}
}

func newNeighborCounter() *NeighborCounter {
	return &NeighborCounter{
		lastChar:  noChar,
		counts:    make(map[rune]map[rune]int),
		stateLock: sync.RWMutex{},
		ready:     make(chan struct{}),
	}
}

// NewNeighborCounterFromDB replays the stored history in the background. Ready is closed once
// the history has been counted. The open rows hold the storage's only connection until then, so
// Store calls on the same storage wait for the scan.
func NewNeighborCounterFromDB(storage Storage) (*NeighborCounter, error) {
	iterator, err := storage.AllIterator()
	if err != nil {
		return nil, err
	}

	tracker := newNeighborCounter()

	go func() {
		defer close(tracker.ready)

		tracker.initCounter(iterator)
	}()

	return tracker, nil
}

func (nc *NeighborCounter) Ready() <-chan struct{} {
	return nc.ready
}

// HandleCharNow counts char after the last one seen. It waits for the history scan so live
// commits always pair with the end of the history.
func (nc *NeighborCounter) HandleCharNow(char rune, verbose bool) {
	<-nc.ready

	nc.stateLock.Lock()
	defer nc.stateLock.Unlock()

	nc.handleChar(char, verbose)
}

// GatherNeighbors lists what followed char, most frequent first.
func (nc *NeighborCounter) GatherNeighbors(char rune) []model.Pair {
	nc.stateLock.RLock()
	defer nc.stateLock.RUnlock()

	counts := nc.counts[char]

	result := make([]model.Pair, 0, len(counts))

	for k, v := range counts {
		result = append(result, model.Pair{Prev: char, Next: k, Pressed: v})
	}

	slices.SortFunc(result, func(a, b model.Pair) int {
		return cmp.Or(
			-cmp.Compare(a.Pressed, b.Pressed),
			cmp.Compare(a.Next, b.Next),
		)
	})

	return result
}

func (nc *NeighborCounter) initCounter(items iter.Seq[model.CommitEvent]) {
	nc.stateLock.Lock()
	defer nc.stateLock.Unlock()

	bar := progressbar.Default(-1, "Scanning history...")

	for item := range items {
		err := bar.Add(1)
		if err != nil {
			slog.Error("could not update progress bar", "error", err)
		}

		nc.handleChar(item.Char, false)
	}

	err := bar.Finish()
	if err != nil {
		slog.Error("could not finish progress bar", "error", err)
	}
}

func (nc *NeighborCounter) handleChar(char rune, verbose bool) {
	if nc.lastChar != noChar {
		if _, exists := nc.counts[nc.lastChar]; !exists {
			nc.counts[nc.lastChar] = make(map[rune]int)
		}

		if verbose {
			slog.Info("char sequence",
				"current", string(char),
				"previous", string(nc.lastChar))
		}

		nc.counts[nc.lastChar][char]++
	}

	nc.lastChar = char
}
