package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"learning-progress-service/internal/domain"
)

type errorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// classify maps the domain error taxonomy onto a stable code and an HTTP status.
func classify(err error) (string, int) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation", http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return "invalid_state", http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return "not_found", http.StatusNotFound
	case errors.Is(err, domain.ErrStorage):
		return "storage", http.StatusServiceUnavailable
	default:
		return "internal", http.StatusInternalServerError
	}
}

func newErrorPayload(err error) errorPayload {
	code, status := classify(err)
	msg := err.Error()
	// Adapter details stay in the logs.
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	return errorPayload{Message: msg, Code: code}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	_, status := classify(err)
	writeJSON(w, status, newErrorPayload(err))
}

// userIDFrom reads the caller's identity. Authentication happens upstream.
func userIDFrom(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return r.URL.Query().Get("userId")
}
