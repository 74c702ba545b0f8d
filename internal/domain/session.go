package domain

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

// SessionType is the exercise format used during a revision session.
type SessionType string

// Possible session types
const (
	SessionTypeFlashcard       SessionType = "flashcard"
	SessionTypeFillBlank       SessionType = "fill_blank"
	SessionTypeWordAssociation SessionType = "word_association"
)

// Valid reports whether t is a known session type.
func (t SessionType) Valid() bool {
	switch t {
	case SessionTypeFlashcard, SessionTypeFillBlank, SessionTypeWordAssociation:
		return true
	default:
		return false
	}
}

// SessionStatus is the lifecycle state of a revision session.
type SessionStatus string

// Possible session statuses. Interrupted is only set by external detection
// of an abandoned client and is treated as a resumable in_progress session.
const (
	SessionStatusInProgress  SessionStatus = "in_progress"
	SessionStatusInterrupted SessionStatus = "interrupted"
	SessionStatusCompleted   SessionStatus = "completed"
)

// Valid reports whether s is a known session status.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusInProgress, SessionStatusInterrupted, SessionStatusCompleted:
		return true
	default:
		return false
	}
}

// IsActive reports whether a session in this status can still accept results.
func (s SessionStatus) IsActive() bool {
	return s == SessionStatusInProgress || s == SessionStatusInterrupted
}

// Common validation errors for RevisionSession
var (
	ErrEmptySessionID       = errors.New("session ID cannot be empty")
	ErrEmptySessionUserID   = errors.New("session user ID cannot be empty")
	ErrEmptySessionListID   = errors.New("session list ID cannot be empty")
	ErrEmptySessionWords    = errors.New("session must contain at least one word")
	ErrDuplicateSessionWord = errors.New("session words must be unique")
	ErrInvalidResponseTime  = errors.New("response time must be greater than or equal to 0")
)

// RevisionSession is one bounded study session over a fixed snapshot of words.
// WordIDs is set at creation and never changes.
type RevisionSession struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"user_id"`
	VocabListID uuid.UUID     `json:"vocab_list_id"`
	SessionType SessionType   `json:"session_type"`
	Status      SessionStatus `json:"status"`
	TotalWords  int           `json:"total_words"`
	WordIDs     []uuid.UUID   `json:"word_ids"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at"`
}

// NewRevisionSession creates an in_progress session over wordIDs.
func NewRevisionSession(
	userID, listID uuid.UUID,
	sessionType SessionType,
	wordIDs []uuid.UUID,
	now time.Time,
) (*RevisionSession, error) {
	s := &RevisionSession{
		ID:          uuid.New(),
		UserID:      userID,
		VocabListID: listID,
		SessionType: sessionType,
		Status:      SessionStatusInProgress,
		TotalWords:  len(wordIDs),
		WordIDs:     slices.Clone(wordIDs),
		StartedAt:   now.UTC(),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks if the RevisionSession has valid data.
func (s *RevisionSession) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySessionID
	}

	if s.UserID == uuid.Nil {
		return ErrEmptySessionUserID
	}

	if s.VocabListID == uuid.Nil {
		return ErrEmptySessionListID
	}

	if !s.SessionType.Valid() {
		return ErrInvalidSessionType
	}

	if !s.Status.Valid() {
		return ErrInvalidSessionStatus
	}

	if len(s.WordIDs) == 0 {
		return ErrEmptySessionWords
	}

	seen := make(map[uuid.UUID]struct{}, len(s.WordIDs))
	for _, id := range s.WordIDs {
		if _, ok := seen[id]; ok {
			return ErrDuplicateSessionWord
		}
		seen[id] = struct{}{}
	}

	return nil
}

// Contains reports whether wordID is part of the session snapshot.
func (s *RevisionSession) Contains(wordID uuid.UUID) bool {
	return slices.Contains(s.WordIDs, wordID)
}

// SessionWordResult is one recorded answer within a session. Rows are write-once.
type SessionWordResult struct {
	ID             uuid.UUID    `json:"id"`
	SessionID      uuid.UUID    `json:"session_id"`
	WordID         uuid.UUID    `json:"word_id"`
	Result         ReviewResult `json:"result"`
	ResponseTimeMs int          `json:"response_time_ms"`
	CreatedAt      time.Time    `json:"created_at"`
}

// NewSessionWordResult creates a result row for wordID in sessionID.
func NewSessionWordResult(
	sessionID, wordID uuid.UUID,
	result ReviewResult,
	responseTimeMs int,
	now time.Time,
) (*SessionWordResult, error) {
	r := &SessionWordResult{
		ID:             uuid.New(),
		SessionID:      sessionID,
		WordID:         wordID,
		Result:         result,
		ResponseTimeMs: responseTimeMs,
		CreatedAt:      now.UTC(),
	}

	switch {
	case sessionID == uuid.Nil:
		return nil, ErrEmptySessionID
	case wordID == uuid.Nil:
		return nil, ErrEmptyProgressWordID
	case !result.Valid():
		return nil, ErrInvalidReviewResult
	case responseTimeMs < 0:
		return nil, ErrInvalidResponseTime
	}

	return r, nil
}

// SessionSummary aggregates the results of a completed session.
type SessionSummary struct {
	SessionID        uuid.UUID `json:"session_id"`
	TotalWords       int       `json:"total_words"`
	CorrectAnswers   int       `json:"correct_answers"`
	IncorrectAnswers int       `json:"incorrect_answers"`
	CompletedAt      time.Time `json:"completed_at"`
}

// Summarize counts correct and incorrect answers for session. results must be
// in submission order, which the stores guarantee independently of timestamps;
// when a word was answered more than once only its last result is counted.
func Summarize(session *RevisionSession, results []*SessionWordResult, completedAt time.Time) SessionSummary {
	summary := SessionSummary{
		SessionID:   session.ID,
		TotalWords:  session.TotalWords,
		CompletedAt: completedAt.UTC(),
	}

	last := make(map[uuid.UUID]ReviewResult, len(results))
	for _, r := range results {
		last[r.WordID] = r.Result
	}
	for _, result := range last {
		switch result {
		case ReviewResultCorrect:
			summary.CorrectAnswers++
		case ReviewResultIncorrect:
			summary.IncorrectAnswers++
		}
	}
	return summary
}

// ReviewStats is a learner-level overview of review activity.
type ReviewStats struct {
	TrackedWords      int     `json:"tracked_words"`
	DueNow            int     `json:"due_now"`
	MasteredWords     int     `json:"mastered_words"`
	CompletedSessions int     `json:"completed_sessions"`
	CorrectResults    int     `json:"correct_results"`
	IncorrectResults  int     `json:"incorrect_results"`
	Accuracy          float64 `json:"accuracy"`
}
