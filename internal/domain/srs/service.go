package srs

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
)

// Common errors
var (
	ErrInvalidResult = errors.New("invalid review result")
	ErrMissingIDs    = errors.New("user and word IDs are required when no previous state exists")
)

// Service defines the interface for scheduling operations.
type Service interface {
	// NextState computes the scheduling state that follows a review.
	//
	// prev may be nil for a word that has never been reviewed, in which case a
	// default state for (userID, wordID) is synthesized first. prev is never
	// modified. The computation is pure: identical inputs give identical output.
	NextState(
		userID, wordID uuid.UUID,
		prev *domain.WordProgress,
		result domain.ReviewResult,
		now time.Time,
	) (*domain.WordProgress, error)

	// Params returns the parameters the service schedules with.
	Params() Params
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduling service with custom parameters.
// A nil params falls back to the defaults.
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// NextState implements Service.
func (s *defaultService) NextState(
	userID, wordID uuid.UUID,
	prev *domain.WordProgress,
	result domain.ReviewResult,
	now time.Time,
) (*domain.WordProgress, error) {
	if !result.Valid() {
		return nil, ErrInvalidResult
	}

	now = now.UTC()
	if prev == nil {
		if userID == uuid.Nil || wordID == uuid.Nil {
			return nil, ErrMissingIDs
		}
		prev = defaultState(userID, wordID, now, s.params)
	}

	return calculateNextState(prev, result, now, s.params), nil
}

// Params implements Service.
func (s *defaultService) Params() Params {
	return *s.params
}
