package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReviewResult is the pass/fail outcome of reviewing one word.
type ReviewResult string

// Possible review result values
const (
	ReviewResultCorrect   ReviewResult = "correct"
	ReviewResultIncorrect ReviewResult = "incorrect"
)

// Valid reports whether r is a known review result.
func (r ReviewResult) Valid() bool {
	return r == ReviewResultCorrect || r == ReviewResultIncorrect
}

// Default scheduling values for a word that has never been reviewed.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3

	// DefaultBulkIntervalDays is the interval given to progress rows created
	// in bulk while resolving a due set.
	DefaultBulkIntervalDays = 1

	// MasteredIntervalDays is the interval at which a word counts as mastered.
	MasteredIntervalDays = 21
)

// Common validation errors for WordProgress
var (
	ErrEmptyProgressUserID = errors.New("word progress user ID cannot be empty")
	ErrEmptyProgressWordID = errors.New("word progress word ID cannot be empty")
	ErrInvalidInterval     = errors.New("interval must be greater than or equal to 0")
	ErrInvalidEaseFactor   = errors.New("ease factor must be at least 1.3")
	ErrInvalidRepetitions  = errors.New("repetitions must be greater than or equal to 0")
	ErrInvalidCounters     = errors.New("review counters must be greater than or equal to 0")
)

// WordProgress is the scheduling state of one word for one learner.
// There is exactly one row per (UserID, WordID) once the word has been
// encountered. It is only mutated through srs.NextState.
type WordProgress struct {
	UserID         uuid.UUID  `json:"user_id"`
	WordID         uuid.UUID  `json:"word_id"`
	NextReviewDate time.Time  `json:"next_review_date"`
	IntervalDays   int        `json:"interval_days"`
	EaseFactor     float64    `json:"ease_factor"`
	Repetitions    int        `json:"repetitions"`
	CorrectCount   int        `json:"correct_count"`
	IncorrectCount int        `json:"incorrect_count"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewWordProgress creates the default progress for a word first seen at now.
// The word is immediately due.
func NewWordProgress(userID, wordID uuid.UUID, intervalDays int, now time.Time) (*WordProgress, error) {
	now = now.UTC()
	p := &WordProgress{
		UserID:         userID,
		WordID:         wordID,
		NextReviewDate: now,
		IntervalDays:   intervalDays,
		EaseFactor:     DefaultEaseFactor,
		Repetitions:    0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks if the WordProgress has valid data.
func (p *WordProgress) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrEmptyProgressUserID
	}

	if p.WordID == uuid.Nil {
		return ErrEmptyProgressWordID
	}

	if p.IntervalDays < 0 {
		return ErrInvalidInterval
	}

	if p.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}

	if p.Repetitions < 0 {
		return ErrInvalidRepetitions
	}

	if p.CorrectCount < 0 || p.IncorrectCount < 0 {
		return ErrInvalidCounters
	}

	return nil
}

// IsDue reports whether the word should be reviewed at now.
func (p *WordProgress) IsDue(now time.Time) bool {
	return !p.NextReviewDate.After(now)
}

// IsMastered reports whether the interval has grown past the mastery threshold.
func (p *WordProgress) IsMastered() bool {
	return p.IntervalDays >= MasteredIntervalDays
}
