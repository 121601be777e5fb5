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
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Health and metrics (no auth required for basic monitoring)
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/ephemeris", func(r chi.Router) {
			r.Get("/holiday", s.handleHoliday)
			r.Get("/weekend", s.handleWeekend)
			r.Get("/daysets", s.handleListDaysets)
			r.Get("/daysets/{name}", s.handleDayset)
			r.Get("/options", s.handleOptions)
			r.Get("/config", s.handleGetConfig)

			r.With(s.authMiddleware).Get("/holiday-file", s.handleHolidayFile)
			r.With(s.authMiddleware).Put("/config", s.handlePutConfig)
		})

		r.Get("/astro/facades", s.handleFacades)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/automation/rules/{uid}/trigger", s.handleTriggerRule)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"country": s.ephemeris.Settings().Country,
	})
}
