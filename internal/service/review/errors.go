package review

import (
	"errors"
	"fmt"
)

// Review workflow errors. Callers match them with errors.Is; the API layer
// maps each one to a status code.
var (
	// ErrEmptyList indicates that the vocabulary list has no words at all.
	// Retrying will not help.
	ErrEmptyList = errors.New("vocabulary list has no words")

	// ErrNoWordsDue indicates that the list has words but none is due.
	// The caller may retry in practice mode.
	ErrNoWordsDue = errors.New("no words due for review")

	// ErrInvalidSession indicates that the session does not exist, belongs to
	// another user, or is already completed.
	ErrInvalidSession = errors.New("invalid review session")

	// ErrWordNotInSession indicates that the submitted word is not part of the
	// session snapshot.
	ErrWordNotInSession = errors.New("word is not part of the review session")

	// ErrSessionActive indicates that the user already has an in_progress or
	// interrupted session and must resume or end it first.
	ErrSessionActive = errors.New("an active review session already exists")

	// ErrEnrichmentFailure marks a failed examples or synonyms lookup. It is
	// only logged; enrichment degrades to empty arrays.
	ErrEnrichmentFailure = errors.New("word enrichment failed")

	// ErrProgressNotFound indicates that the user has never encountered the word.
	ErrProgressNotFound = errors.New("word progress not found")
)

// ServiceError wraps unexpected failures of the review service with the
// operation that produced them.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "start_session", "submit_result")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a new ServiceError for operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
