package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/phrazzld/roster-api/internal/domain"
)

// ErrorResponse defines the standard error response structure:
// {"error": string, "errors"?: [{"field":..., "message":...}]}.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
	TraceID string              `json:"trace_id,omitempty"`
	Code    int                 `json:"-"` // Not serialized, used for logging
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithError writes a JSON error response with the given status code
// and message. The TraceID from the request context is attached when
// available.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondError(w, r, ErrorResponse{
		Error:   message,
		Code:    status,
		TraceID: GetTraceID(r.Context()),
	})
}

// RespondWithValidationError writes a 400 response carrying every
// field-level failure from the validation error.
func RespondWithValidationError(
	w http.ResponseWriter,
	r *http.Request,
	verr *domain.ValidationError,
) {
	respondError(w, r, ErrorResponse{
		Error:   "validation failed",
		Errors:  verr.Fields,
		Code:    http.StatusBadRequest,
		TraceID: GetTraceID(r.Context()),
	})
}

func respondError(w http.ResponseWriter, r *http.Request, resp ErrorResponse) {
	// 5xx responses are logged at ERROR; client errors only at DEBUG.
	level := slog.LevelDebug
	if resp.Code >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "sending error response",
		"status_code", resp.Code,
		"message", resp.Error,
		"trace_id", resp.TraceID,
		"path", r.URL.Path,
		"method", r.Method)

	RespondWithJSON(w, r, resp.Code, resp)
}
