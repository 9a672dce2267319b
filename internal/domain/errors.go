package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur while parsing and scoring measurements.
var (
	// ErrMissingTeam indicates that a row carries no team name. Rows with
	// this error are skipped by the aggregator rather than failing a run.
	ErrMissingTeam = errors.New("missing team name")

	// ErrUnresolvedField indicates that a value expected from an upstream
	// resolver (area id, node distance, signal reading) is empty.
	ErrUnresolvedField = errors.New("unresolved field")

	// ErrMalformedNumber indicates that a numeric column could not be parsed.
	ErrMalformedNumber = errors.New("malformed number")

	// ErrUnknownTag indicates that a subjective bonus tag is not present in
	// the category table. It is only returned when strict tag checking is on.
	ErrUnknownTag = errors.New("unknown bonus tag")

	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// RowError represents a failure to turn a raw row into a measurement.
// It names the row and column so operators can fix the source sheet.
type RowError struct {
	// RowID is the value of the row's id column, if any.
	RowID string

	// Column is the name of the offending column.
	Column string

	// Err is the underlying error that caused parsing to fail.
	Err error
}

// Error implements the error interface for RowError.
func (e *RowError) Error() string {
	return fmt.Sprintf("row error: id=%s, column=%s, err=%v", e.RowID, e.Column, e.Err)
}

// Unwrap returns the underlying error, supporting Go 1.13+ error unwrapping.
func (e *RowError) Unwrap() error { return e.Err }

// NewRowError creates a new RowError with the given details.
func NewRowError(rowID, column string, err error) *RowError {
	return &RowError{
		RowID:  rowID,
		Column: column,
		Err:    err,
	}
}

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
