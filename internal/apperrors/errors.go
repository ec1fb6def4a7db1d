package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Handlers map these to HTTP
// statuses at the boundary; services wrap them with context via %w.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")
	// ErrValidation indicates failure during data validation.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized indicates an authorization failure.
	ErrUnauthorized = errors.New("unauthorized access")
	// ErrDuplicate indicates a conflict due to duplicate data (unique constraint).
	ErrDuplicate = errors.New("duplicate resource")
	// ErrConflict indicates an invalid state transition or general conflict.
	ErrConflict = errors.New("resource conflict")
	// ErrDatabase indicates a general database interaction error.
	ErrDatabase = errors.New("database error")
)

// DuplicateLeadError carries the identity of the already-existing lead so
// the API can answer a 409 with {lead_id, assigned_to}.
type DuplicateLeadError struct {
	LeadID     int
	AssignedTo int
}

func (e *DuplicateLeadError) Error() string {
	return fmt.Sprintf("lead with this phone already exists (id=%d)", e.LeadID)
}

func (e *DuplicateLeadError) Unwrap() error {
	return ErrDuplicate
}
