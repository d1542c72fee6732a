package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for errors.Is() checking.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation error")
	ErrConflict      = errors.New("conflict")
	ErrForbidden     = errors.New("forbidden")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrUnavailable   = errors.New("unavailable")
	ErrConfiguration = errors.New("configuration error")
	ErrTimeout       = errors.New("operation timed out")
)

// ValidationError provides programmatic access to field-level validation failures.
// Use errors.Is(err, ErrValidation) for simple checks, or errors.As(err, &verr) to
// access verr.Fields for per-field error details.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError is shorthand for a single-field ValidationError.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// ConfigurationError reports a required setting that is absent or malformed.
// Retrying cannot fix it, so callers must never retry on it.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrConfiguration.Error(), e.Setting, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// ConnectivityError reports a failure to reach the document store after the
// bounded retry budget was spent.
type ConnectivityError struct {
	Attempts int
	Err      error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("database unreachable after %d attempt(s): %v", e.Attempts, e.Err)
}

// Unwrap exposes both the unavailable sentinel and the driver error so that
// callers can classify on either.
func (e *ConnectivityError) Unwrap() []error {
	return []error{ErrUnavailable, e.Err}
}

// OperationTimeoutError reports a single query that exceeded its allotted time.
// It is not retried automatically.
type OperationTimeoutError struct {
	Operation string
	Err       error
}

func (e *OperationTimeoutError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrTimeout.Error(), e.Operation, e.Err)
}

func (e *OperationTimeoutError) Unwrap() []error {
	return []error{ErrTimeout, e.Err}
}
