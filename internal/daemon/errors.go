package daemon

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// APIError is the JSON error envelope of the HTTP API
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// NewAPIError creates an API error
func NewAPIError(code, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

// WithCause attaches the underlying error. It is logged, never sent.
func (e *APIError) WithCause(err error) *APIError {
	e.cause = err
	return e
}

// ErrorResponse wraps an APIError on the wire
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, apiErr *APIError) {
	attrs := []any{
		"correlation_id", GetCorrelationID(r.Context()),
		"code", apiErr.Code,
		"message", apiErr.Message,
		"status", status,
		"method", r.Method,
		"path", r.URL.Path,
	}
	if apiErr.cause != nil {
		attrs = append(attrs, "cause", apiErr.cause.Error())
	}

	if status >= 500 {
		slog.Error("api error", attrs...)
	} else {
		slog.Warn("api error", attrs...)
	}

	writeJSON(w, status, ErrorResponse{Error: apiErr})
}

func notFound(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, http.StatusNotFound, NewAPIError("NOT_FOUND", message))
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, http.StatusBadRequest, NewAPIError("BAD_REQUEST", message))
}

func internalError(w http.ResponseWriter, r *http.Request, message string, cause error) {
	writeError(w, r, http.StatusInternalServerError, NewAPIError("INTERNAL_ERROR", message).WithCause(cause))
}
