package web

// errors.go provides unified error response handling for the web layer:
// technical details are logged server-side with the request id, clients
// get a stable code, a readable message, and a suggested action.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/reportstack/consolidator/internal/core"
	"github.com/reportstack/consolidator/internal/logging"
	"github.com/reportstack/consolidator/internal/session"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
	Code   string `json:"code"`
}

// respondError logs err with request context and writes the mapped
// user-facing response. Store-unavailable errors additionally carry a
// Retry-After header with the suggested backoff; the server never
// retries on the caller's behalf.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	var unavailable *core.UnavailableError
	if errors.As(err, &unavailable) {
		w.Header().Set("Retry-After", strconv.Itoa(int(unavailable.RetryAfter.Seconds())))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:  msg.Message,
		Action: msg.Action,
		Code:   msg.Code,
	})
}

// classify maps an error to an HTTP status and user message. Session
// errors are handled here since core knows nothing about sessions;
// everything else defers to core.MapError.
func classify(err error) (int, core.UserMessage) {
	var partial *core.PartialArchiveError
	var unavailable *core.UnavailableError

	switch {
	case errors.Is(err, session.ErrUserExists):
		return http.StatusConflict, core.UserMessage{
			Code:    "USR001",
			Message: "This username is already taken.",
			Action:  "Choose a different username.",
		}
	case errors.Is(err, session.ErrPasswordTooShort):
		return http.StatusBadRequest, core.UserMessage{
			Code:    "USR002",
			Message: "The password is too short.",
			Action:  "Use a longer password.",
		}
	case errors.Is(err, session.ErrInvalidCredentials):
		return http.StatusUnauthorized, core.UserMessage{
			Code:    "USR003",
			Message: "Invalid username or password.",
		}
	case errors.Is(err, core.ErrPresetNotFound):
		return http.StatusNotFound, core.MapError(err)
	case errors.Is(err, core.ErrDuplicateField),
		errors.Is(err, core.ErrFieldIndex),
		errors.Is(err, core.ErrEmptyRuleName),
		errors.Is(err, core.ErrNoColumnsMapped):
		return http.StatusUnprocessableEntity, core.MapError(err)
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable, core.MapError(err)
	case errors.As(err, &partial):
		return http.StatusInternalServerError, core.MapError(err)
	default:
		return http.StatusInternalServerError, core.MapError(err)
	}
}

// badRequest writes a 400 with a fixed message for malformed requests.
func badRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: "REQ001"})
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers already sent; nothing to do but log.
		slog.Error("json encode error", "error", err)
	}
}
