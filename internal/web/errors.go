package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as sanitized messages with action suggestions
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error kind determines the status code (not-found, client, internal)
//  4. Technical error is logged with request ID for correlation
//  5. The user-friendly mapping is rendered as JSON

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/contractops/appconfig-api/internal/appconfig"
	"github.com/contractops/appconfig-api/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action)
// fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error server-side and writes a sanitized
// JSON response with a status code derived from the error kind.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	userMsg := appconfig.MapError(err)

	if errors.Is(err, appconfig.ErrNotFound) {
		userMsg = appconfig.UserMessage{Message: "Resource not found", Code: "NF001"}
	}
	if errors.Is(err, appconfig.ErrInvalidSortColumn) {
		userMsg = appconfig.UserMessage{
			Message: "Unknown sort column",
			Action:  "Use one of the listed record fields as sort_by",
			Code:    "REQ003",
		}
	}

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusForError maps error kinds to HTTP status codes. Store and encoding
// failures are always a generic internal failure; detail stays in the logs.
func statusForError(err error) int {
	switch {
	case errors.Is(err, appconfig.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, appconfig.ErrInvalidSortColumn):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes a plain JSON error response for request-shape problems
// (bad body, bad path parameter) that never reach the service layer.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, message)
}

// writeJSON encodes v as JSON with the given status code.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
