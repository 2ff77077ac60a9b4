package api

import (
	"encoding/json"
	"net/http"

	"github.com/nerrad567/device-registry/internal/device"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string              `json:"detail"`
	Code   string              `json:"code"`
	Errors []device.FieldError `json:"errors,omitempty"`
}

// Common error codes.
const (
	ErrCodeNotFound        = "not_found"
	ErrCodeConflict        = "conflict"
	ErrCodeInternal        = "internal_error"
	ErrCodeValidation      = "validation_error"
	ErrCodeMethodNotAllow  = "method_not_allowed"
	ErrCodePayloadTooLarge = "payload_too_large"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, ErrorResponse{
		Detail: detail,
		Code:   code,
	})
}

// writeValidationError writes a 422 response listing each rejected field.
func writeValidationError(w http.ResponseWriter, detail string, fields []device.FieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Detail: detail,
		Code:   ErrCodeValidation,
		Errors: fields,
	})
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, detail string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, detail)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, detail string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, detail)
}
