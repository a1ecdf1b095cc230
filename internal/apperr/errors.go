// Package apperr holds the error taxonomy shared by services, stores and
// handlers. Handlers translate these into HTTP status codes; everything
// below the handler layer only wraps and returns them.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrNotFound          = errors.New("not found")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrValidation        = errors.New("validation error")
	ErrPersistence       = errors.New("persistence error")
	ErrGateway           = errors.New("gateway error")
	ErrRateLimited       = errors.New("rate limited")
	ErrPaymentRequired   = errors.New("payment required")
)

// ValidationError describes the first malformed field of an input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validation creates a ValidationError for a single field.
func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

type persistenceError struct {
	cause error
}

func (e *persistenceError) Error() string {
	return e.cause.Error()
}

func (e *persistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e *persistenceError) Unwrap() error { return e.cause }

// Persistence marks err as a store failure. errors.Is(result, ErrPersistence)
// holds and the original cause stays reachable through errors.Is/As.
// Taxonomy errors that already carry meaning (not found, conflict) pass
// through unchanged.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) || errors.Is(err, ErrValidation) {
		return err
	}
	return &persistenceError{cause: err}
}

// GatewayError is a failure of the external completion API.
type GatewayError struct {
	StatusCode int
	Kind       error
	Detail     string
}

func (e *GatewayError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("gateway: status %d: %s", e.StatusCode, e.Detail)
	}
	return "gateway: " + e.Detail
}

func (e *GatewayError) Is(target error) bool {
	return target == ErrGateway || target == e.Kind
}
