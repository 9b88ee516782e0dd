package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ValidationError carries a field-level rejection reason.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed"
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// ErrValidation is the sentinel error for rejected input.
var ErrValidation = ValidationError{}

// UnavailableError marks a failed call to a backing service.
// Subsystem is "backend" for the data store and "chain" for the
// reputation contract, so callers can keep the kinds apart.
type UnavailableError struct {
	Subsystem string
	Err       error
}

func (e UnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s unavailable", e.Subsystem)
	}
	return fmt.Sprintf("%s unavailable: %v", e.Subsystem, e.Err)
}

func (e UnavailableError) Unwrap() error { return e.Err }

func (e UnavailableError) Is(target error) bool {
	t, ok := target.(UnavailableError)
	if !ok {
		return false
	}
	return t.Subsystem == "" || t.Subsystem == e.Subsystem
}

// ErrBackendUnavailable matches any data-store transport failure.
var ErrBackendUnavailable = UnavailableError{Subsystem: "backend"}

// ErrChainUnavailable matches any reputation-contract transport failure.
var ErrChainUnavailable = UnavailableError{Subsystem: "chain"}

type sentinel string

func (e sentinel) Error() string { return string(e) }

const (
	// ErrUnauthenticated is returned when no valid session backs a call.
	ErrUnauthenticated = sentinel("not authenticated")
	// ErrForbidden is returned when the caller is authenticated but does
	// not own the resource it is mutating.
	ErrForbidden = sentinel("forbidden")
	// ErrConflict is returned when a uniqueness rule rejects a write.
	ErrConflict = sentinel("conflict")
	// ErrAuthInProgress is returned when an auth operation is already in
	// flight for the same identity.
	ErrAuthInProgress = sentinel("authentication already in progress")
	// ErrInvalidTransition is returned when an application status change
	// is not in the allowed-transition table.
	ErrInvalidTransition = sentinel("invalid status transition")
)
