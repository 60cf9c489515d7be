package qamissync

import "fmt"

// APIError classifies a QAMIS fetch failure. StatusCode is zero for
// transport-level failures where no response arrived.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("qamis api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("qamis api error: %s", e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

func newAPIError(status int, format string, args ...any) *APIError {
	return &APIError{StatusCode: status, Message: fmt.Sprintf(format, args...)}
}

func wrapAPIError(err error, format string, args ...any) *APIError {
	return &APIError{Message: fmt.Sprintf(format, args...), Err: err}
}

// ValidationError rejects an entity with a missing or inconsistent
// required field. It aborts only the inspection being reconciled.
type ValidationError struct {
	Entity  string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Entity, e.Message)
}

func newValidationError(entity string, format string, args ...any) *ValidationError {
	return &ValidationError{Entity: entity, Message: fmt.Sprintf(format, args...)}
}

// SyncError wraps a validation or persistence failure with the identity
// of the entity that failed, so batch logs can name the offender.
type SyncError struct {
	Entity string
	Name   string
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("failed to sync %s %q: %v", e.Entity, e.Name, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }
