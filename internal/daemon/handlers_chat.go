package daemon

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
	"github.com/felixgeelhaar/zahlenpirat/internal/engine"
	"github.com/felixgeelhaar/zahlenpirat/internal/textnorm"
)

// plainParam reads the plain query flag. Missing or unparsable values
// mean plain output.
func plainParam(r *http.Request) bool {
	v := r.URL.Query().Get("plain")
	if v == "" {
		return true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return true
	}
	return b
}

func render(text string, plain bool) string {
	if plain {
		return textnorm.ToPlain(text)
	}
	return text
}

type flowRequest struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

type flowResponse struct {
	Text      string                `json:"text"`
	AutoSaved *domain.SessionRecord `json:"autoSaved,omitempty"`
}

func (s *Server) handleFlow(w http.ResponseWriter, r *http.Request) {
	var req flowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.SessionID == "" {
		badRequest(w, r, "sessionId is required")
		return
	}

	slog.Debug("flow input", "session_id", req.SessionID, "correlation_id", GetCorrelationID(r.Context()))
	reply := s.engine.HandleUserInput(r.Context(), req.SessionID, req.Text)

	resp := flowResponse{Text: render(reply, plainParam(r))}
	if saved, ok := s.autoSave(r, req.SessionID); ok {
		resp.AutoSaved = &saved
	}
	writeJSON(w, http.StatusOK, resp)
}

// autoSave appends a running snapshot of the session to its history.
// Failures are logged; the chat reply is delivered regardless.
func (s *Server) autoSave(r *http.Request, sessionID string) (domain.SessionRecord, bool) {
	snap, ok := s.engine.Snapshot(sessionID)
	if !ok {
		return domain.SessionRecord{}, false
	}

	rec := domain.RecordFromSettings(sessionID, snap.SessionStandards, snap.Stats)
	saved, err := s.history.Save(r.Context(), sessionID, rec)
	if err != nil {
		slog.Error("auto-save session", "session_id", sessionID, "error", err,
			"correlation_id", GetCorrelationID(r.Context()))
		return domain.SessionRecord{}, false
	}
	return saved, true
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("sessionId"))
	if sessionID == "" {
		badRequest(w, r, "sessionId is required")
		return
	}

	view, err := s.engine.EffectiveSettings(r.Context(), sessionID)
	if err != nil {
		internalError(w, r, "failed to load settings", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"text": render(engine.FormatView(view), plainParam(r)),
		"data": view,
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	persistent, err := s.settings.Load(r.Context())
	if err != nil {
		slog.Warn("start menu without standards", "error", err)
		persistent = domain.Settings{}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"text": render(engine.StartMenu(persistent), plainParam(r)),
	})
}
