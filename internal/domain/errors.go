package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying every failure the core can report.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrInvalidState  = errors.New("invalid state")
	ErrValidation    = errors.New("validation failed")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrRateLimited   = errors.New("rate limited")
)

// DomainError carries a sentinel classification together with a
// caller-facing message.
type DomainError struct {
	Err     error
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.Err }

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s %s not found", entity, id),
	}
}

// NewConflictError reports a resource conflict (e.g. an occupied slot).
func NewConflictError(message string) *DomainError {
	return &DomainError{Err: ErrConflict, Message: message}
}

// NewInvalidStateError reports an illegal state transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{
		Err:     ErrInvalidState,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewStateError reports a state-dependent rejection with a status-specific message.
func NewStateError(message string) *DomainError {
	return &DomainError{Err: ErrInvalidState, Message: message}
}

// NewValidationError reports malformed or missing input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Err: ErrValidation, Message: message}
}

// NewUnauthorizedError reports a missing or invalid identity.
func NewUnauthorizedError(message string) *DomainError {
	return &DomainError{Err: ErrUnauthorized, Message: message}
}

// NewForbiddenError reports an authorization failure (not owner, blocked account).
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Err: ErrForbidden, Message: message}
}

// NewQuotaError reports daily-rights exhaustion, naming the exhausted user.
func NewQuotaError(message string) *DomainError {
	return &DomainError{Err: ErrQuotaExceeded, Message: message}
}

// NewRateLimitError reports that a per-day request limit was hit.
func NewRateLimitError(message string) *DomainError {
	return &DomainError{Err: ErrRateLimited, Message: message}
}
