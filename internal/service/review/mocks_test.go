package review

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/phrazzld/vocab-review/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockVocabularyStore mocks store.VocabularyStore
type MockVocabularyStore struct {
	mock.Mock
}

func (m *MockVocabularyStore) GetWordsByList(ctx context.Context, listID uuid.UUID) ([]domain.Word, error) {
	args := m.Called(ctx, listID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Word), args.Error(1)
}

func (m *MockVocabularyStore) GetExamplesForWords(
	ctx context.Context,
	wordIDs []uuid.UUID,
) (map[uuid.UUID][]string, error) {
	args := m.Called(ctx, wordIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID][]string), args.Error(1)
}

func (m *MockVocabularyStore) GetSynonymsForWords(
	ctx context.Context,
	wordIDs []uuid.UUID,
) (map[uuid.UUID][]string, error) {
	args := m.Called(ctx, wordIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID][]string), args.Error(1)
}

func (m *MockVocabularyStore) AddExamples(ctx context.Context, wordID uuid.UUID, examples []string) (int, error) {
	args := m.Called(ctx, wordID, examples)
	return args.Int(0), args.Error(1)
}

// MockProgressStore mocks store.ProgressStore
type MockProgressStore struct {
	mock.Mock
}

func (m *MockProgressStore) Get(ctx context.Context, userID, wordID uuid.UUID) (*domain.WordProgress, error) {
	args := m.Called(ctx, userID, wordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WordProgress), args.Error(1)
}

func (m *MockProgressStore) GetForUpdate(ctx context.Context, userID, wordID uuid.UUID) (*domain.WordProgress, error) {
	args := m.Called(ctx, userID, wordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WordProgress), args.Error(1)
}

func (m *MockProgressStore) GetForWords(
	ctx context.Context,
	userID uuid.UUID,
	wordIDs []uuid.UUID,
) (map[uuid.UUID]*domain.WordProgress, error) {
	args := m.Called(ctx, userID, wordIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*domain.WordProgress), args.Error(1)
}

func (m *MockProgressStore) Upsert(ctx context.Context, p *domain.WordProgress) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProgressStore) BulkInsertDefaults(ctx context.Context, rows []*domain.WordProgress) (int, error) {
	args := m.Called(ctx, rows)
	return args.Int(0), args.Error(1)
}

func (m *MockProgressStore) ListsWithDueWords(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit, offset int,
) ([]domain.ListDueCount, error) {
	args := m.Called(ctx, userID, now, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ListDueCount), args.Error(1)
}

func (m *MockProgressStore) CountListsWithDueWords(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	args := m.Called(ctx, userID, now)
	return args.Int(0), args.Error(1)
}

func (m *MockProgressStore) DueWordsByList(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]domain.ListDueWords, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ListDueWords), args.Error(1)
}

func (m *MockProgressStore) Stats(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.ReviewStats, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewStats), args.Error(1)
}

func (m *MockProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return m
}

// MockSessionStore mocks store.SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, session *domain.RevisionSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionStore) Get(ctx context.Context, id, userID uuid.UUID) (*domain.RevisionSession, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RevisionSession), args.Error(1)
}

func (m *MockSessionStore) GetForUpdate(ctx context.Context, id, userID uuid.UUID) (*domain.RevisionSession, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RevisionSession), args.Error(1)
}

func (m *MockSessionStore) FindActive(ctx context.Context, userID uuid.UUID) (*domain.RevisionSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RevisionSession), args.Error(1)
}

func (m *MockSessionStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.SessionStatus,
	completedAt *time.Time,
) error {
	args := m.Called(ctx, id, status, completedAt)
	return args.Error(0)
}

func (m *MockSessionStore) CountCompleted(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return m
}

// MockResultStore mocks store.ResultStore
type MockResultStore struct {
	mock.Mock
}

func (m *MockResultStore) Append(ctx context.Context, result *domain.SessionWordResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockResultStore) ListForSession(ctx context.Context, sessionID uuid.UUID) ([]*domain.SessionWordResult, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SessionWordResult), args.Error(1)
}

func (m *MockResultStore) CountByResult(ctx context.Context, userID uuid.UUID) (int, int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockResultStore) WithTx(tx *sql.Tx) store.ResultStore {
	return m
}

// stubGenerator is an ExampleGenerator with a fixed answer.
type stubGenerator struct {
	examples []string
	err      error
	calls    atomic.Int32
}

func (g *stubGenerator) GenerateExamples(ctx context.Context, term, definition string) ([]string, error) {
	g.calls.Add(1)
	return g.examples, g.err
}

// slowGenerator answers only after delay, or fails when ctx ends first.
type slowGenerator struct {
	delay time.Duration
	calls atomic.Int32
}

func (g *slowGenerator) GenerateExamples(ctx context.Context, term, definition string) ([]string, error) {
	g.calls.Add(1)
	select {
	case <-time.After(g.delay):
		return []string{"late example for " + term}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func storeProgressNotFound() error {
	return fmt.Errorf("lookup: %w", store.ErrProgressNotFound)
}
