package routes

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/dasdy/tapboard/db"
	"github.com/dasdy/tapboard/layout"
	"github.com/dasdy/tapboard/model"
	cs "github.com/dasdy/tapboard/web/components"
)

// ServerHandler holds all dependencies needed for the web server handlers.
type ServerHandler struct {
	Storage         db.Storage
	NeighborTracker db.Tracker
	Keyboards       layout.Keyboards
}

// SafeRenderTemplate safely renders a templ component to an http.ResponseWriter.
func SafeRenderTemplate(component templ.Component, w http.ResponseWriter) error {
	// Do not write to w because it implies 200 status
	var buf bytes.Buffer

	err := component.Render(context.Background(), &buf)
	if err != nil {
		return fmt.Errorf("could not render template: %w", err)
	}

	// Template executed successfully to the buffer.
	// Now, copy it over to the ResponseWriter
	// This implies a 200 OK status code
	w.Header().Set("Content-Type", "text/html; charset=UTF-8")

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response", "error", err)

		return fmt.Errorf("could not write to response writer: %w", err)
	}

	return nil
}

// InitEmptyItems lays out every key of l with a zero count. Keys are placed the way the keyboard
// places them, one KeyUnit per key on the widest row.
func InitEmptyItems(keyboards layout.Keyboards, l model.Layout) ([]cs.Item, float64, float64) {
	rows := keyboards.Rows(l)

	maxCols := 0
	for _, row := range rows {
		maxCols = max(maxCols, len([]rune(row)))
	}

	width := float64(maxCols) * cs.KeyUnit
	height := float64(len(rows)) * cs.KeyUnit

	geometry := layout.Build(rows, width, height)
	keys := geometry.Keys()

	items := make([]cs.Item, 0, len(keys))
	i := 0

	for _, row := range rows {
		keyWidth := width / float64(len([]rune(row)))

		for range []rune(row) {
			key := keys[i]
			i++

			items = append(items, cs.Item{
				Char:   key.Char,
				Label:  keyLabel(key.Char),
				X:      key.X - keyWidth/2,
				Y:      key.Y - cs.KeyUnit/2,
				Width:  keyWidth,
				Height: cs.KeyUnit,
			})
		}
	}

	return items, width, height
}

// keyLabel draws the switch key as its marker rather than a mode name.
func keyLabel(char rune) string {
	if char == layout.SwitchMarker {
		return string(char)
	}

	return layout.Label(char, model.ToUpper)
}

func layoutFromRequest(r *http.Request, fallback model.Layout) (model.Layout, error) {
	param := r.URL.Query().Get("layout")
	if param == "" {
		return fallback, nil
	}

	l, ok := cs.ParseLayoutParam(param)
	if !ok {
		return 0, fmt.Errorf("unknown layout %q", param)
	}

	return l, nil
}
