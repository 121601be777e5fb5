package api

import (
	"net/http"

	"github.com/nerrad567/gray-logic-ephemeris/internal/astro"
)

// handleFacades returns the current sun exposure of every facade.
func (s *Server) handleFacades(w http.ResponseWriter, _ *http.Request) {
	now := s.now()
	states := []astro.FacadeState{}
	if s.tracker != nil {
		states = s.tracker.States(now)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"time":    now,
		"facades": states,
		"count":   len(states),
	})
}
