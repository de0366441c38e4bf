package db

import (
	"database/sql"
	"fmt"
	"iter"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/dasdy/tapboard/model"
	"github.com/schollz/progressbar/v3"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStorage struct {
	db      *sql.DB
	verbose bool
}

func InitDBStorage(conn *sql.DB) error {
	sqlStmt := `
	create table if not exists commits(char text, layout int, ts datetime);`

	_, err := conn.Exec(sqlStmt)
	if err != nil {
		return fmt.Errorf("could not create commits table: %w", err)
	}

	sqlStmt = ` create index if not exists commits_tsix on commits (ts ASC);`

	_, err = conn.Exec(sqlStmt)
	if err != nil {
		return fmt.Errorf("could not create commits index: %w", err)
	}

	return nil
}

func NewStorageFromPath(path string, verbose bool) (*SQLiteStorage, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}

	return NewStorageFromConnection(conn, verbose)
}

func NewStorageFromConnection(conn *sql.DB, verbose bool) (*SQLiteStorage, error) {
	// Every connection to :memory: is a separate database, and sqlite takes one writer anyway
	conn.SetMaxOpenConns(1)

	err := InitDBStorage(conn)
	if err != nil {
		return nil, err
	}

	return &SQLiteStorage{db: conn, verbose: verbose}, nil
}

func (s *SQLiteStorage) Store(event *model.CommitEvent) error {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.Exec(`insert into commits(char, layout, ts) values(?, ?, ?)`,
		string(event.Char), int(event.Layout), ts)
	if err != nil {
		return fmt.Errorf("could not store %q: %w", event.Char, err)
	}

	if s.verbose {
		slog.Info("Stored commit", "char", string(event.Char), "layout", event.Layout)
	}

	return nil
}

// GatherAll counts commits per character, most used first.
func (s *SQLiteStorage) GatherAll() ([]model.CharCount, error) {
	rows, err := s.db.Query(
		`select char, count(*) as cnt
        from commits
        group by char
        order by cnt desc, char`)
	if err != nil {
		return nil, fmt.Errorf("could not count commits: %w", err)
	}

	defer rows.Close()

	result := make([]model.CharCount, 0)

	for rows.Next() {
		var (
			char  string
			count int
		)

		err = rows.Scan(&char, &count)
		if err != nil {
			return nil, fmt.Errorf("could not read commit count: %w", err)
		}

		r, _ := utf8.DecodeRuneInString(char)
		result = append(result, model.CharCount{Char: r, Count: count})
	}

	return result, rows.Err()
}

// AllIterator walks every commit in time order. A row that cannot be read ends the walk.
func (s *SQLiteStorage) AllIterator() (iter.Seq[model.CommitEvent], error) {
	rows, err := s.db.Query(
		`select char, layout, ts
        from commits
        order by ts`)
	if err != nil {
		return nil, fmt.Errorf("could not read commits: %w", err)
	}

	return func(yield func(model.CommitEvent) bool) {
		defer rows.Close()

		for rows.Next() {
			var (
				char   string
				layout int
				ts     time.Time
			)

			if err := rows.Scan(&char, &layout, &ts); err != nil {
				slog.Error("Could not read commit", "error", err)

				return
			}

			r, _ := utf8.DecodeRuneInString(char)

			if !yield(model.CommitEvent{Char: r, Layout: model.Layout(layout), Timestamp: ts}) {
				return
			}
		}
	}, nil
}

// Merge copies every commit of inputs into output, keeping the original timestamps.
func Merge(inputs []*SQLiteStorage, output *SQLiteStorage) error {
	bar := progressbar.Default(-1, "Merging...")

	for i, input := range inputs {
		items, err := input.AllIterator()
		if err != nil {
			return fmt.Errorf("could not read input %d: %w", i, err)
		}

		tx, err := output.db.Begin()
		if err != nil {
			return fmt.Errorf("could not start transaction: %w", err)
		}

		for item := range items {
			_, err := tx.Exec(`insert into commits(char, layout, ts) values(?, ?, ?)`,
				string(item.Char), int(item.Layout), item.Timestamp)
			if err != nil {
				_ = tx.Rollback()

				return fmt.Errorf("could not copy commit from input %d: %w", i, err)
			}

			if err := bar.Add(1); err != nil {
				slog.Error("could not update progress bar", "error", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("could not commit input %d: %w", i, err)
		}
	}

	if err := bar.Finish(); err != nil {
		slog.Error("could not finish progress bar", "error", err)
	}

	return nil
}

func (s *SQLiteStorage) Close() {
	if err := s.db.Close(); err != nil {
		slog.Error("Could not close storage", "error", err)
	}
}
