package routes

import (
	"cmp"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dasdy/tapboard/model"
	cs "github.com/dasdy/tapboard/web/components"
)

const maxConnections = 5

var errBadKey = errors.New("key must be exactly one character")

// BuildNeighborsRenderContext builds the render context for the neighbors page.
func (s *ServerHandler) BuildNeighborsRenderContext(neighbors []model.Pair, char rune, l model.Layout) cs.RenderContext {
	items, width, height := InitEmptyItems(s.Keyboards, l)

	counts := make(map[rune]int, len(neighbors))
	for _, pair := range neighbors {
		counts[pair.Next] += pair.Pressed
	}

	maxVal := 0

	for i := range items {
		items[i].Count = counts[items[i].Char]
		items[i].Highlight = items[i].Char == char

		if maxVal < items[i].Count {
			maxVal = items[i].Count
		}
	}

	renderContext := cs.RenderContext{
		Width:     width,
		Height:    height,
		Items:     items,
		MaxVal:    maxVal,
		Highlight: char,
		Layout:    l,
		Page:      cs.PageTypeNeighbors,
	}

	sorted := slices.Clone(neighbors)
	slices.SortFunc(sorted, func(a, b model.Pair) int {
		return -cmp.Compare(a.Pressed, b.Pressed)
	})

	connections := make([]cs.Connection, 0, maxConnections)

	for _, pair := range sorted {
		if _, ok := renderContext.Find(pair.Next); !ok {
			continue
		}

		connections = append(connections, cs.Connection{
			From:       char,
			To:         pair.Next,
			PressCount: pair.Pressed,
		})
		if len(connections) >= maxConnections {
			break
		}
	}

	slog.Debug("Found neighbor connections", "count", len(connections))

	renderContext.Connections = connections

	return renderContext
}

// layoutOf picks the first keyboard showing char.
func (s *ServerHandler) layoutOf(char rune) model.Layout {
	for _, l := range []model.Layout{model.Lowercase, model.Caps, model.Numeric} {
		for _, row := range s.Keyboards.Rows(l) {
			if strings.ContainsRune(row, char) {
				return l
			}
		}
	}

	return model.Lowercase
}

func keyFromRequest(r *http.Request) (rune, error) {
	key := r.URL.Query().Get("key")
	if utf8.RuneCountInString(key) != 1 {
		return 0, errBadKey
	}

	char, _ := utf8.DecodeRuneInString(key)

	return char, nil
}

// NeighborsHandle handles requests to the neighbors page.
func (s *ServerHandler) NeighborsHandle(w http.ResponseWriter, r *http.Request) {
	slog.Info("Handling neighbors page request")

	char, err := keyFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	l, err := layoutFromRequest(r, s.layoutOf(char))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	neighbors := s.NeighborTracker.GatherNeighbors(char)

	renderContext := s.BuildNeighborsRenderContext(neighbors, char, l)

	if err := SafeRenderTemplate(cs.HeatMap(&renderContext), w); err != nil {
		slog.Error("Failed to render neighbors", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
