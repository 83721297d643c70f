package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Get("/validate", s.handleValidate)

		r.Route("/config", func(r chi.Router) {
			r.Get("/", s.handleListConfig)

			r.Route("/{key}", func(r chi.Router) {
				r.Get("/", s.handleGetConfig)
				r.Put("/", s.handleSetConfig)
				r.Delete("/", s.handleDeleteConfig)
			})
		})

		// WebSocket change feed
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}
