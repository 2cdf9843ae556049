package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// CONSISTENT ERROR FORMAT:
// Every error response from our API has the same shape:
//   {"error": "not_found", "message": "restaurant not found with id abc123"}
//
// This makes it easy for clients to parse errors — they always know what
// fields to expect, regardless of whether it's a 400, 404, or 503.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/restaurant-directory/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
// Having a struct ensures consistent JSON shape across all error responses.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error kind (e.g., "not_found")
	Message string `json:"message"` // Human-readable description
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// You MUST set headers and status code BEFORE writing the body.
// Once you call w.Write() (which Encode does internally), the headers are sent.
// Any header changes after that are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent — all we can do is log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// This is the ONE place domain errors become HTTP. The service layer returns
// apperror kinds; errors.Is() walks the wrap chain (our AppError implements
// Unwrap) and the switch below pins each kind to a status:
//
//	validation_error → 400   client sent structurally invalid input
//	invalid_id       → 400   malformed identifier (xid parse failure)
//	conflict         → 400   uniqueness violation (duplicate username)
//	bad_credentials  → 400   password mismatch on login
//	unauthenticated  → 401   missing/invalid session token
//	not_found        → 404   well-formed id, no matching record
//	unavailable      → 503   the store is unreachable (retryable)
//
// Anything unrecognized is a 500 with a generic message — raw internal
// errors can contain SQL fragments or file paths and never reach the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError

	// errors.As() is like errors.Is() but extracts the error value.
	// It walks the chain and fills appErr if it finds an *AppError.
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorKind := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorKind = "validation_error"
		case errors.Is(err, apperror.ErrInvalidID):
			status = http.StatusBadRequest
			errorKind = "invalid_id"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusBadRequest
			errorKind = "conflict"
		case errors.Is(err, apperror.ErrBadCredentials):
			status = http.StatusBadRequest
			errorKind = "bad_credentials"
		case errors.Is(err, apperror.ErrUnauthenticated):
			status = http.StatusUnauthorized
			errorKind = "unauthenticated"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorKind = "not_found"
		case errors.Is(err, apperror.ErrUnavailable):
			status = http.StatusServiceUnavailable
			errorKind = "unavailable"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorKind,
			Message: appErr.Message,
		})
		return
	}

	// Unknown error — return a generic 500 with no internal detail.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
