package api

import (
	"encoding/json"
	"errors"
	"maps"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-ephemeris/internal/ephemeris"
)

// dateLayout renders calendar days in responses.
const dateLayout = time.DateOnly

// holidayResponse is the body of GET /ephemeris/holiday.
type holidayResponse struct {
	Date    string `json:"date"`
	Holiday bool   `json:"holiday"`
	Name    string `json:"name,omitempty"`
}

// weekendResponse is the body of GET /ephemeris/weekend.
type weekendResponse struct {
	Date    string `json:"date"`
	Weekend bool   `json:"weekend"`
}

// daysetInfo describes one configured dayset.
type daysetInfo struct {
	Name string   `json:"name"`
	Days []string `json:"days"`
}

// daysetResponse is the body of GET /ephemeris/daysets/{name}.
type daysetResponse struct {
	Date   string `json:"date"`
	Dayset string `json:"dayset"`
	Member bool   `json:"member"`
}

// holidayFileResponse is the body of GET /ephemeris/holiday-file.
type holidayFileResponse struct {
	Date string `json:"date"`
	File string `json:"file"`
	Key  string `json:"key,omitempty"`
}

// handleHoliday reports whether the requested day is a bank holiday.
func (s *Server) handleHoliday(w http.ResponseWriter, r *http.Request) {
	offset, ok := queryOffset(w, r)
	if !ok {
		return
	}

	name, holiday, err := s.ephemeris.GetBankHolidayName(offset)
	if err != nil {
		s.logger.Error("bank holiday lookup failed", "offset", offset, "error", err)
		if errors.Is(err, ephemeris.ErrUnknownCountry) {
			writeError(w, http.StatusConflict, ErrCodeConflict, "no holiday calendar for the configured country")
			return
		}
		writeInternalError(w, "bank holiday lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, holidayResponse{
		Date:    s.ephemeris.Date(offset).Format(dateLayout),
		Holiday: holiday,
		Name:    name,
	})
}

// handleWeekend reports whether the requested day is in the weekend dayset.
func (s *Server) handleWeekend(w http.ResponseWriter, r *http.Request) {
	offset, ok := queryOffset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, weekendResponse{
		Date:    s.ephemeris.Date(offset).Format(dateLayout),
		Weekend: s.ephemeris.IsWeekEnd(offset),
	})
}

// handleListDaysets lists every configured dayset with its weekdays.
func (s *Server) handleListDaysets(w http.ResponseWriter, _ *http.Request) {
	registry := s.ephemeris.Daysets()
	names := registry.Names()

	daysets := make([]daysetInfo, 0, len(names))
	for _, name := range names {
		set, ok := registry.Get(name)
		if !ok {
			continue
		}
		info := daysetInfo{Name: name, Days: make([]string, 0, 7)}
		for _, d := range set.Days() {
			info.Days = append(info.Days, ephemeris.WeekdayName(d))
		}
		daysets = append(daysets, info)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"daysets": daysets,
		"count":   len(daysets),
	})
}

// handleDayset reports whether the requested day belongs to a dayset.
func (s *Server) handleDayset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := s.ephemeris.Daysets().Get(name); !ok {
		writeNotFound(w, "dayset not found")
		return
	}
	offset, ok := queryOffset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, daysetResponse{
		Date:   s.ephemeris.Date(offset).Format(dateLayout),
		Dayset: name,
		Member: s.ephemeris.IsInDayset(name, offset),
	})
}

// handleHolidayFile looks the requested day up in a user holiday file.
func (s *Server) handleHolidayFile(w http.ResponseWriter, r *http.Request) {
	file := r.URL.Query().Get("file")
	if file == "" {
		writeBadRequest(w, "file is required")
		return
	}
	offset, ok := queryOffset(w, r)
	if !ok {
		return
	}

	key, _, err := s.ephemeris.GetHolidayUserFile(offset, file)
	switch {
	case errors.Is(err, ephemeris.ErrInvalidHolidayFile):
		s.logger.Debug("holiday file rejected", "file", file, "error", err)
		writeBadRequest(w, "invalid holiday file name")
		return
	case errors.Is(err, ephemeris.ErrHolidayFileLoad):
		s.logger.Warn("holiday file unusable", "file", file, "error", err)
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, "holiday file cannot be loaded")
		return
	case err != nil:
		s.logger.Error("holiday file lookup failed", "file", file, "error", err)
		writeInternalError(w, "holiday file lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, holidayFileResponse{
		Date: s.ephemeris.Date(offset).Format(dateLayout),
		File: file,
		Key:  key,
	})
}

// handleOptions lists the selectable values of an ephemeris configuration
// parameter, labelled in the requested locale.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	uri := q.Get("uri")
	if uri == "" {
		uri = ephemeris.ConfigURI
	}

	options := s.ephemeris.GetParameterOptions(uri, q.Get("param"), q.Get("locale"))
	if options == nil {
		writeNotFound(w, "no options for uri")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"uri":     uri,
		"options": options,
	})
}

// handleGetConfig returns the effective property map.
func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"properties": s.ephemeris.Properties(),
		"settings":   s.ephemeris.Settings(),
	})
}

// handlePutConfig validates, persists and applies a property map. Daysets
// merge into the existing ones, so the stored map carries the current
// dayset definitions overlaid with the request.
func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var props map[string]string
	if err := json.NewDecoder(r.Body).Decode(&props); err != nil {
		writeBadRequest(w, "body must be a JSON object of string properties")
		return
	}
	if err := ephemeris.ValidateProperties(props); err != nil {
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, "holiday file cannot be loaded")
		return
	}

	if s.store != nil {
		stored := s.ephemeris.Daysets().Properties()
		maps.Copy(stored, props)
		if err := s.store.Save(r.Context(), stored); err != nil {
			s.logger.Error("saving ephemeris configuration", "error", err)
			writeInternalError(w, "failed to save configuration")
			return
		}
	}

	s.ephemeris.Configure(props)
	s.logger.Info("ephemeris configuration updated",
		"subject", subject(r),
		"properties", len(props),
		"request_id", r.Context().Value(ctxKeyRequestID),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"properties": s.ephemeris.Properties(),
		"settings":   s.ephemeris.Settings(),
	})
}
