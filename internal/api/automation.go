package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-ephemeris/internal/automation"
)

// handleTriggerRule fires a rule's manual trigger. The optional JSON object
// body becomes the trigger outputs seen by conditions and actions.
func (s *Server) handleTriggerRule(w http.ResponseWriter, r *http.Request) {
	if s.rules == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "rule engine not available")
		return
	}

	uid := chi.URLParam(r, "uid")
	var outputs map[string]any
	if err := json.NewDecoder(r.Body).Decode(&outputs); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "body must be a JSON object")
		return
	}

	err := s.rules.TriggerRule(r.Context(), uid, outputs)
	switch {
	case errors.Is(err, automation.ErrRuleNotFound):
		writeNotFound(w, "rule not found")
		return
	case errors.Is(err, automation.ErrRuleDisabled):
		writeError(w, http.StatusConflict, ErrCodeConflict, "rule is disabled")
		return
	case errors.Is(err, automation.ErrNoManualTrigger):
		writeError(w, http.StatusConflict, ErrCodeConflict, "rule has no manual trigger")
		return
	case err != nil:
		s.logger.Error("rule trigger failed", "rule_uid", uid, "error", err)
		writeInternalError(w, "rule trigger failed")
		return
	}

	s.logger.Info("rule triggered via API",
		"rule_uid", uid,
		"subject", subject(r),
		"request_id", r.Context().Value(ctxKeyRequestID),
	)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":   "triggered",
		"rule_uid": uid,
	})
}
