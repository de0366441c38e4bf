package db

import (
	"iter"

	"github.com/dasdy/tapboard/model"
)

// Tracker counts characters committed directly after each other.
type Tracker interface {
	HandleCharNow(char rune, verbose bool)
	GatherNeighbors(char rune) []model.Pair
}

type Storage interface {
	Store(event *model.CommitEvent) error
	GatherAll() ([]model.CharCount, error)
	AllIterator() (iter.Seq[model.CommitEvent], error)
	Close()
}
