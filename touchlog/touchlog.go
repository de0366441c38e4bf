// Package touchlog drives a keyboard from a stream of touch log lines, either a recorded one or a
// device attached right now.
package touchlog

import (
	"context"
	"log/slog"

	"github.com/dasdy/tapboard/gesture"
	"github.com/dasdy/tapboard/logging"
	"github.com/dasdy/tapboard/model"
	"github.com/dasdy/tapboard/touchlog/parser"
)

var logCtx = logging.PackageCtx("touchlog")

type Handler interface {
	HandleTouch(ev model.TouchEvent) bool
}

// Summary counts what happened to the lines of one run.
type Summary struct {
	Lines     int
	Events    int
	Handled   int
	Skipped   int
	Malformed int
}

func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("lines", s.Lines),
		slog.Int("events", s.Events),
		slog.Int("handled", s.Handled),
		slog.Int("skipped", s.Skipped),
		slog.Int("malformed", s.Malformed),
	)
}

func (s *Summary) parse(line string, enableLogs bool) *model.TouchEvent {
	s.Lines++

	parsed, err := parser.ParseLine(line)
	if err != nil {
		s.Malformed++

		slog.WarnContext(logCtx, "Got warning", "error", err, "line", line)

		return nil
	}

	if parsed == nil {
		s.Skipped++

		return nil
	}

	s.Events++

	if enableLogs {
		slog.InfoContext(logCtx, "Event!", "event", *parsed)
	}

	return parsed
}

func (s *Summary) handle(handler Handler, ev model.TouchEvent) {
	if handler.HandleTouch(ev) {
		s.Handled++
	}
}

// Replay feeds a recorded log to handler. Time is whatever the log says it is: the scheduler is
// advanced to each event before it is handled, so timers fire exactly as they did on the device.
// Events older than the scheduler clock are handled at the current time.
func Replay(lines <-chan string, scheduler *gesture.ManualScheduler, handler Handler, enableLogs bool) Summary {
	var summary Summary

	for line := range lines {
		ev := summary.parse(line, enableLogs)
		if ev == nil {
			continue
		}

		if ev.Time < scheduler.Now() {
			ev.Time = scheduler.Now()
		}

		scheduler.AdvanceTo(ev.Time)
		summary.handle(handler, *ev)
	}

	slog.InfoContext(logCtx, "Replay finished", "summary", summary)

	return summary
}

// Live feeds lines from attached devices to handler, and runs the scheduler's timers on the same
// goroutine. Device clocks are not trusted: events are stamped with the time they were received.
// Returns when lines is closed or ctx is done.
func Live(ctx context.Context, lines <-chan string, scheduler *gesture.LoopScheduler, handler Handler, enableLogs bool) Summary {
	var summary Summary

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				slog.InfoContext(logCtx, "Input closed, bailing out", "summary", summary)

				return summary
			}

			ev := summary.parse(line, enableLogs)
			if ev == nil {
				continue
			}

			ev.Time = scheduler.Now()
			summary.handle(handler, *ev)
		case fn := <-scheduler.C():
			fn()
		case <-ctx.Done():
			slog.InfoContext(logCtx, "Received done, bailing out", "summary", summary)

			return summary
		}
	}
}
