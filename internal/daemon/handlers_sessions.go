package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
	"github.com/felixgeelhaar/zahlenpirat/internal/history"
	"github.com/felixgeelhaar/zahlenpirat/internal/tasks"
	"github.com/felixgeelhaar/zahlenpirat/internal/textnorm"
)

// anonymousPlayer owns extended saves that name no player
const anonymousPlayer = "Anonym"

type saveSessionRequest struct {
	Player      string               `json:"spieler"`
	SessionData domain.SessionRecord `json:"sessionData"`
}

func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	var req saveSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}

	saved, err := s.history.Save(r.Context(), req.Player, req.SessionData)
	switch {
	case errors.Is(err, domain.ErrEmptyPlayer), errors.Is(err, domain.ErrInvalidStatus):
		badRequest(w, r, err.Error())
		return
	case err != nil:
		internalError(w, r, "failed to save session", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "saved": saved})
}

// handleSaveExtended never fails with an HTTP error; problems are
// reported as {status:"error"}.
func (s *Server) handleSaveExtended(w http.ResponseWriter, r *http.Request) {
	var rec domain.SessionRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "error", "error": err.Error()})
		return
	}

	player := strings.TrimSpace(rec.Player)
	if player == "" {
		player = anonymousPlayer
		rec.Player = player
	}

	saved, err := s.history.Save(r.Context(), player, rec)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "error", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "saved": saved})
}

func (s *Server) handleSaveWithFallback(w http.ResponseWriter, r *http.Request) {
	if s.fallback == nil {
		writeError(w, r, http.StatusServiceUnavailable,
			NewAPIError("FALLBACK_DISABLED", "no save endpoint configured (fallback.base_url)"))
		return
	}

	var payload json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, s.fallback.SaveWithFallback(r.Context(), payload))
}

type playerRequest struct {
	Player string `json:"spieler"`
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.history.End)
}

func (s *Server) handleAbortSession(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.history.Abort)
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request, apply func(context.Context, string) (history.Transition, error)) {
	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	player := strings.TrimSpace(req.Player)
	if player == "" {
		badRequest(w, r, "spieler is required")
		return
	}

	tr, err := apply(r.Context(), player)
	if history.IsNoSession(err) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "error",
			"message": history.NoSessionMessage(player),
		})
		return
	}
	if err != nil {
		internalError(w, r, "failed to update session", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": tr.Message,
		"session": tr.Session,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	player := strings.TrimSpace(r.URL.Query().Get("spieler"))
	if player == "" {
		badRequest(w, r, "spieler is required")
		return
	}

	sessions, err := s.history.History(r.Context(), player)
	if err != nil {
		internalError(w, r, "failed to load history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"spieler": player, "sessions": sessions})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			badRequest(w, r, "limit must be a positive number")
			return
		}
		limit = n
	}

	board, err := s.history.Leaderboard(r.Context(), limit)
	if err != nil {
		internalError(w, r, "failed to build leaderboard", err)
		return
	}
	if board == nil {
		board = []history.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": board})
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := tasks.BatchRequest{Count: 1}
	if v := q.Get("operator"); v != "" {
		req.Operators = strings.Split(textnorm.NormalizeOperatorValue(v), ",")
	}
	if v := q.Get("klasse"); v != "" {
		grade, err := strconv.Atoi(v)
		if err != nil {
			badRequest(w, r, "klasse must be a number")
			return
		}
		req.Grade = grade
	}
	if v := q.Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			badRequest(w, r, "count must be a positive number")
			return
		}
		req.Count = n
	}

	writeJSON(w, http.StatusOK, map[string]any{"tasks": s.tasks.Batch(req)})
}
