package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the error kinds the HTTP boundary must distinguish.
// Services and repositories return AppErrors wrapping one of these; handlers
// branch with errors.Is and never inspect error strings.
var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrInvalidID       = errors.New("invalid id")
	ErrBadCredentials  = errors.New("bad credentials")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnavailable     = errors.New("store unavailable")
)

type AppError struct {
	Err     error  // sentinel kind (one of the Err* values above)
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness violation, e.g. a username that is already
// taken. The signup flow renders a specific message for this kind, so it
// must stay distinguishable from a generic failure.
func Conflict(resource, key string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists: %s", resource, key),
	}
}

// InvalidID reports a malformed identifier — a client input error, distinct
// from NotFound (well-formed id, no matching record).
func InvalidID(id string) *AppError {
	return &AppError{
		Err:     ErrInvalidID,
		Message: fmt.Sprintf("malformed id %q", id),
	}
}

// BadCredentials reports a password mismatch for an existing user.
// Distinct from ErrNotFound (unknown username) so the login flow can log
// which one occurred — it must NOT leak the distinction to the end user.
func BadCredentials() *AppError {
	return &AppError{
		Err:     ErrBadCredentials,
		Message: "invalid username or password",
	}
}

// Unauthenticated reports a request that lacks a valid identity token.
func Unauthenticated() *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: "valid authentication required",
	}
}

// Unavailable reports an infrastructure failure (the store is unreachable).
// Handlers map this to a 5xx with no sensitive detail.
func Unavailable(message string) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: message,
	}
}
