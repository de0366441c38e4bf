package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dasdy/tapboard/db"
	"github.com/dasdy/tapboard/layout"
	"github.com/dasdy/tapboard/web/routes"
)

func disableCacheInDevMode(dev bool, next http.Handler) http.Handler {
	if !dev {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func BuildServer(storage db.Storage, neighborTracker db.Tracker, keyboards layout.Keyboards, dev bool) *http.ServeMux {
	mux := http.NewServeMux()

	handler := routes.ServerHandler{
		Storage:         storage,
		NeighborTracker: neighborTracker,
		Keyboards:       keyboards,
	}

	mux.Handle("/neighbors", disableCacheInDevMode(dev, http.HandlerFunc(handler.NeighborsHandle)))
	mux.Handle("/", disableCacheInDevMode(dev, http.HandlerFunc(handler.StatsHandle)))

	return mux
}

func StartServer(port int, storage db.Storage, neighborTracker db.Tracker, keyboards layout.Keyboards, dev bool) error {
	slog.Info("Running interface", "port", port, "keyboards", keyboards.Name)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           BuildServer(storage, neighborTracker, keyboards, dev),
		ReadHeaderTimeout: 5 * time.Second,
	}

	err := server.ListenAndServe()
	if err != nil {
		return fmt.Errorf("could not run server: %w", err)
	}

	return nil
}
