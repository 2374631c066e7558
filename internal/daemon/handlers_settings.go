package daemon

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/felixgeelhaar/zahlenpirat/internal/settings"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	current, err := s.settings.Load(r.Context())
	if err != nil {
		internalError(w, r, "failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, current)
}

func (s *Server) handleSetSettings(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}

	values := make(map[string]string, len(payload))
	for k, v := range payload {
		values[k] = stringValue(v)
	}

	saved, err := settings.Apply(r.Context(), s.settings, values)
	if err != nil {
		internalError(w, r, "failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "saved": saved})
}

func (s *Server) handleSetSingle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := q.Get("key")
	if key == "" || !q.Has("value") {
		badRequest(w, r, "key and value are required")
		return
	}

	saved, err := settings.Set(r.Context(), s.settings, key, q.Get("value"))
	if err != nil {
		internalError(w, r, "failed to save setting", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"saved":  map[string]string{key: saved},
	})
}

func (s *Server) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	if err := s.settings.Reset(r.Context()); err != nil {
		internalError(w, r, "failed to reset settings", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "all standards reset"})
}

// stringValue flattens a decoded JSON value into its settings text
func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
