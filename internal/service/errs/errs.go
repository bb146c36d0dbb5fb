package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound covers absent orders and products, and ownership misses.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated is returned when no caller identity is present.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInsufficientStock rejects an order whose quantity exceeds live stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrConflict covers duplicate writes such as a repeated wishlist entry.
	ErrConflict = errors.New("conflict")
	// ErrExternalService wraps gateway failures. Not retried automatically.
	ErrExternalService = errors.New("external service failure")
	// ErrSignature rejects a webhook whose HMAC does not match.
	ErrSignature = errors.New("signature mismatch")
)

// ValidationError names the request field that failed validation so the
// client can point at it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// HTTPStatus maps a service error to the status code the transport should
// answer with. Unrecognized errors map to 500.
func HTTPStatus(err error) int {
	var ve *ValidationError

	switch {
	case errors.As(err, &ve), errors.Is(err, ErrSignature):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
