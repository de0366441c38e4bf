package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dasdy/tapboard/model"
)

var ErrMalformed = errors.New("malformed touch line")

const fieldCount = 5

// ParseLine reads one touch primitive, e.g.
//
//	[00:00:01.120] touch: t: 120, pointer: 0, action: down, x: 10.5, y: 20
//
// Lines that do not carry all of t, pointer, action, x and y are not touch lines, and come back as
// nil without an error.
func ParseLine(line string) (*model.TouchEvent, error) {
	splits := strings.Fields(line)

	var (
		event      model.TouchEvent
		foundCount int
		seen       = make(map[string]bool, fieldCount)
	)

	ix := 0
	limit := len(splits) - 1 // We always care about the next token, so stop before it's too late

	for ix < limit {
		curItem := splits[ix]
		nextItem := strings.TrimRight(splits[ix+1], ",")
		// Trim the reset escape code some firmwares colour their output with
		nextItem = strings.TrimSuffix(nextItem, "\x1b[0m")

		var err error

		switch curItem {
		case "t:":
			var ms float64

			ms, err = strconv.ParseFloat(nextItem, 64)
			if err == nil && ms < 0 {
				err = errors.New("negative time")
			}

			event.Time = time.Duration(ms * float64(time.Millisecond))
		case "pointer:":
			event.PointerID, err = strconv.Atoi(nextItem)
		case "action:":
			var ok bool

			event.Action, ok = model.ParseTouchAction(nextItem)
			if !ok {
				err = fmt.Errorf("unknown action '%s'", nextItem)
			}
		case "x:":
			event.X, err = strconv.ParseFloat(nextItem, 64)
		case "y:":
			event.Y, err = strconv.ParseFloat(nextItem, 64)
		default:
			ix++

			continue
		}

		if err != nil {
			return nil, fmt.Errorf("%w: could not parse %s %q: %w", ErrMalformed, curItem, nextItem, err)
		}

		if !seen[curItem] {
			seen[curItem] = true
			foundCount++
		}

		ix += 2
	}

	if foundCount == fieldCount {
		return &event, nil
	}

	return nil, nil
}
