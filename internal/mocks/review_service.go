package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/phrazzld/vocab-review/internal/service/review"
)

// MockReviewService implements review.Service for testing. Methods whose
// function field is nil return zero values and Err.
type MockReviewService struct {
	GetDueWordsFn func(ctx context.Context, userID, listID uuid.UUID, limit int) ([]domain.EnrichedWord, error)

	StartSessionFn func(
		ctx context.Context,
		userID, listID uuid.UUID,
		sessionType domain.SessionType,
		practiceMode bool,
	) (*review.StartedSession, error)

	SubmitResultFn func(
		ctx context.Context,
		sessionID, userID, wordID uuid.UUID,
		result domain.ReviewResult,
		responseTimeMs int,
	) (*domain.WordProgress, error)

	EndSessionFn            func(ctx context.Context, sessionID, userID uuid.UUID) (*domain.SessionSummary, error)
	GetActiveSessionFn      func(ctx context.Context, userID uuid.UUID) (*domain.RevisionSession, error)
	ListsWithDueWordsFn     func(ctx context.Context, userID uuid.UUID, page, pageSize int) (*review.ListsPage, error)
	DueWordsGroupedByListFn func(ctx context.Context, userID uuid.UUID) ([]domain.ListDueWords, error)
	GetWordProgressFn       func(ctx context.Context, userID, wordID uuid.UUID) (*domain.WordProgress, error)
	StatsFn                 func(ctx context.Context, userID uuid.UUID) (*domain.ReviewStats, error)

	Err error
}

var _ review.Service = (*MockReviewService)(nil)

// GetDueWords implements review.Service
func (m *MockReviewService) GetDueWords(
	ctx context.Context,
	userID, listID uuid.UUID,
	limit int,
) ([]domain.EnrichedWord, error) {
	if m.GetDueWordsFn != nil {
		return m.GetDueWordsFn(ctx, userID, listID, limit)
	}
	return nil, m.Err
}

// StartSession implements review.Service
func (m *MockReviewService) StartSession(
	ctx context.Context,
	userID, listID uuid.UUID,
	sessionType domain.SessionType,
	practiceMode bool,
) (*review.StartedSession, error) {
	if m.StartSessionFn != nil {
		return m.StartSessionFn(ctx, userID, listID, sessionType, practiceMode)
	}
	return nil, m.Err
}

// SubmitResult implements review.Service
func (m *MockReviewService) SubmitResult(
	ctx context.Context,
	sessionID, userID, wordID uuid.UUID,
	result domain.ReviewResult,
	responseTimeMs int,
) (*domain.WordProgress, error) {
	if m.SubmitResultFn != nil {
		return m.SubmitResultFn(ctx, sessionID, userID, wordID, result, responseTimeMs)
	}
	return nil, m.Err
}

// EndSession implements review.Service
func (m *MockReviewService) EndSession(
	ctx context.Context,
	sessionID, userID uuid.UUID,
) (*domain.SessionSummary, error) {
	if m.EndSessionFn != nil {
		return m.EndSessionFn(ctx, sessionID, userID)
	}
	return nil, m.Err
}

// GetActiveSession implements review.Service
func (m *MockReviewService) GetActiveSession(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.RevisionSession, error) {
	if m.GetActiveSessionFn != nil {
		return m.GetActiveSessionFn(ctx, userID)
	}
	return nil, m.Err
}

// ListsWithDueWords implements review.Service
func (m *MockReviewService) ListsWithDueWords(
	ctx context.Context,
	userID uuid.UUID,
	page, pageSize int,
) (*review.ListsPage, error) {
	if m.ListsWithDueWordsFn != nil {
		return m.ListsWithDueWordsFn(ctx, userID, page, pageSize)
	}
	return nil, m.Err
}

// DueWordsGroupedByList implements review.Service
func (m *MockReviewService) DueWordsGroupedByList(
	ctx context.Context,
	userID uuid.UUID,
) ([]domain.ListDueWords, error) {
	if m.DueWordsGroupedByListFn != nil {
		return m.DueWordsGroupedByListFn(ctx, userID)
	}
	return nil, m.Err
}

// GetWordProgress implements review.Service
func (m *MockReviewService) GetWordProgress(
	ctx context.Context,
	userID, wordID uuid.UUID,
) (*domain.WordProgress, error) {
	if m.GetWordProgressFn != nil {
		return m.GetWordProgressFn(ctx, userID, wordID)
	}
	return nil, m.Err
}

// Stats implements review.Service
func (m *MockReviewService) Stats(ctx context.Context, userID uuid.UUID) (*domain.ReviewStats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx, userID)
	}
	return nil, m.Err
}
