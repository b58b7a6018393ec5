// Package http provides the REST surface of the service.
package http

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP router for the service. frontendDir may
// be empty, in which case no static files are served.
func NewRouter(handler *Handler, frontendDir string) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoint
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/pills/identify", handler.Identify)
		r.Post("/pills/followup", handler.FollowUp)
		r.Post("/tts", handler.Synthesize)
	})

	// Static frontend
	if frontendDir != "" {
		fs := http.FileServer(http.Dir(frontendDir))
		r.Handle("/static/*", fs)
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.ServeFile(w, req, filepath.Join(frontendDir, "index.html"))
		})
	}

	return r
}
