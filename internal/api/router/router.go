// Package router assembles the HTTP surface: health, metrics, and the
// evaluation run API.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rolebench-ai/rolebench/internal/http/handlers"
	"github.com/rolebench-ai/rolebench/internal/prompt"
)

// Config holds router configuration.
type Config struct {
	RunsHandler    *handlers.RunsHandler
	MetricsHandler http.Handler
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Get("/roles", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string][]string{"roles": prompt.Roles()})
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.RunsHandler != nil {
		r.Route("/runs", func(r chi.Router) {
			r.Post("/", cfg.RunsHandler.StartRun)
			r.Get("/{id}", cfg.RunsHandler.GetRun)
		})
	}

	return r
}
