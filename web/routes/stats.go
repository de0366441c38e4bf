package routes

import (
	"log/slog"
	"net/http"

	"github.com/dasdy/tapboard/model"
	cs "github.com/dasdy/tapboard/web/components"
)

// BuildStatsRenderContext builds the render context for the stats page.
func (s *ServerHandler) BuildStatsRenderContext(dbStats []model.CharCount, l model.Layout) cs.RenderContext {
	items, width, height := InitEmptyItems(s.Keyboards, l)

	counts := make(map[rune]int, len(dbStats))
	for _, stat := range dbStats {
		counts[stat.Char] += stat.Count
	}

	maxVal := 0

	for i := range items {
		items[i].Count = counts[items[i].Char]

		if maxVal < items[i].Count {
			maxVal = items[i].Count
		}
	}

	return cs.RenderContext{
		Width:  width,
		Height: height,
		Items:  items,
		MaxVal: maxVal,
		Layout: l,
		Page:   cs.PageTypeStats,
	}
}

// StatsHandle handles requests to the stats page.
func (s *ServerHandler) StatsHandle(w http.ResponseWriter, r *http.Request) {
	slog.Info("Handling stats page request")

	l, err := layoutFromRequest(r, model.Lowercase)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	curStats, err := s.Storage.GatherAll()
	if err != nil {
		slog.Error("Failed to get stats", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	slog.Debug("Gathered current stats", "chars", len(curStats))

	renderContext := s.BuildStatsRenderContext(curStats, l)

	if err := SafeRenderTemplate(cs.HeatMap(&renderContext), w); err != nil {
		slog.Error("Failed to render stats", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
