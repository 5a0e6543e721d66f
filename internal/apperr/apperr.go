// Package apperr defines the error taxonomy shared by the transport client,
// the reconciliation services and the CLI.
//
// Validation errors are resolved locally and never reach the network.
// Authentication errors should send the user back to login. Not-found errors
// on deletes are tolerated. Transport errors are retryable and never mean a
// mutation succeeded. A Stale error means the mutation did succeed but the
// follow-up refresh did not.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when no token is available or the server
	// rejected it.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrNotFound is returned when the requested entity no longer exists.
	ErrNotFound = errors.New("not found")

	// ErrTransport matches every *TransportError via errors.Is.
	ErrTransport = errors.New("transport failure")
)

// Reasons used by payment validation.
const (
	ReasonInvalidAmount = "invalid amount"
	ReasonExceedsTotal  = "exceeds total"
)

// ValidationError reports input that was rejected before contacting the server,
// or that the server rejected as malformed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// Validation returns a *ValidationError with the given reason.
func Validation(reason string) error {
	return &ValidationError{Reason: reason}
}

// TransportError wraps a network, server or decoding failure.
type TransportError struct {
	// Op names the client operation, e.g. "bills.getById".
	Op string

	// StatusCode is the HTTP status, or 0 if no response was received.
	StatusCode int

	Err error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: server returned %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTransport) match any TransportError.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// StaleError reports that a mutation was confirmed by the server but the
// authoritative refresh that should follow it failed.
type StaleError struct {
	BillID string
	Err    error
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("change saved but bill %s could not be refreshed: %v", e.BillID, e.Err)
}

func (e *StaleError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsAuthentication reports whether err requires the user to sign in again.
func IsAuthentication(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// IsNotFound reports whether err means the entity is gone.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransport reports whether err is a retryable transport failure.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsStale reports whether err is a partial failure: saved, not refreshed.
func IsStale(err error) bool {
	var se *StaleError
	return errors.As(err, &se)
}

// Reason returns the validation reason carried by err, or "".
func Reason(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return ""
}
