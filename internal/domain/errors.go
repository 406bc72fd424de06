package domain

import (
	"errors"
	"fmt"
)

// Application errors
var (
	// ErrNotFound record not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate duplicate record, e.g. an already registered email
	ErrDuplicate = errors.New("duplicate record")

	// ErrInvalidInput missing or malformed input data
	ErrInvalidInput = errors.New("invalid input data")

	// ErrUnauthenticated no valid caller identity
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden authenticated but outside the permitted scope
	ErrForbidden = errors.New("forbidden")

	// ErrConflict a concurrent transition lost the race or a unique field collided
	ErrConflict = errors.New("conflict")

	// ErrInvalidTransition lifecycle move not permitted from the current state
	ErrInvalidTransition = errors.New("invalid subscription transition")

	// ErrInvalidCycle billing cycle outside the enumerated set
	ErrInvalidCycle = errors.New("invalid billing cycle")

	// ErrInvalidCredentials login failure; deliberately generic
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInternal unexpected collaborator failure
	ErrInternal = errors.New("internal error")
)

// TransitionError reports a rejected subscription lifecycle move.
type TransitionError struct {
	From SubscriptionStatus
	To   SubscriptionStatus
}

// Error implements the error interface
func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid subscription transition from %q to %q", e.From, e.To)
}

// Is makes TransitionError match ErrInvalidTransition
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// NewTransitionError builds a TransitionError
func NewTransitionError(from, to SubscriptionStatus) *TransitionError {
	return &TransitionError{From: from, To: to}
}

// NotFoundError reports a missing entity with context.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Entity, e.ID)
}

// Is makes NotFoundError match ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError builds a NotFoundError
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// DuplicateError reports a unique-field collision.
type DuplicateError struct {
	Entity string
	Field  string
	Value  string
}

// Error implements the error interface
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s with %s '%s' already exists", e.Entity, e.Field, e.Value)
}

// Is makes DuplicateError match ErrDuplicate
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// NewDuplicateError builds a DuplicateError
func NewDuplicateError(entity, field, value string) *DuplicateError {
	return &DuplicateError{Entity: entity, Field: field, Value: value}
}

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors is a set of validation failures.
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	if len(e) == 1 {
		return fmt.Sprintf("validation failed: %s - %s", e[0].Field, e[0].Message)
	}
	return fmt.Sprintf("validation failed: %d errors", len(e))
}

// Is makes ValidationErrors match ErrInvalidInput
func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidInput
}

// Add appends a validation failure
func (e *ValidationErrors) Add(field, message string) {
	*e = append(*e, ValidationError{Field: field, Message: message})
}

// HasErrors reports whether any failure was recorded
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Fields flattens the failures into a field -> message map
func (e ValidationErrors) Fields() map[string]string {
	fields := make(map[string]string, len(e))
	for _, ve := range e {
		fields[ve.Field] = ve.Message
	}
	return fields
}
