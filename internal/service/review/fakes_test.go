package review

import (
	"context"
	"database/sql"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/phrazzld/vocab-review/internal/domain/srs"
	"github.com/phrazzld/vocab-review/internal/store"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory implementation of every store the review
// workflow uses. Its semantics follow the postgres stores: insert-if-absent
// for default progress and a single active session per user.
type memStore struct {
	mu       sync.Mutex
	lists    map[uuid.UUID][]domain.Word
	examples map[uuid.UUID][]string
	synonyms map[uuid.UUID][]string
	progress map[[2]uuid.UUID]*domain.WordProgress
	sessions map[uuid.UUID]*domain.RevisionSession
	results  []*domain.SessionWordResult

	examplesErr    error
	synonymsErr    error
	addExamplesErr error
}

func newMemStore() *memStore {
	return &memStore{
		lists:    make(map[uuid.UUID][]domain.Word),
		examples: make(map[uuid.UUID][]string),
		synonyms: make(map[uuid.UUID][]string),
		progress: make(map[[2]uuid.UUID]*domain.WordProgress),
		sessions: make(map[uuid.UUID]*domain.RevisionSession),
	}
}

// addList creates a list with one word per term and returns the word ids.
func (s *memStore) addList(listID uuid.UUID, terms ...string) []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uuid.UUID, len(terms))
	for i, term := range terms {
		ids[i] = uuid.New()
		s.lists[listID] = append(s.lists[listID], domain.Word{
			ID: ids[i], ListID: listID, Term: term, Definition: "definition of " + term,
		})
	}
	return ids
}

func (s *memStore) setProgress(p *domain.WordProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.progress[[2]uuid.UUID{p.UserID, p.WordID}] = &cp
}

func (s *memStore) progressFor(userID, wordID uuid.UUID) *domain.WordProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progress[[2]uuid.UUID{userID, wordID}]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (s *memStore) progressCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.progress)
}

func (s *memStore) resultCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// vocabulary

func (s *memStore) GetWordsByList(ctx context.Context, listID uuid.UUID) ([]domain.Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lists[listID]), nil
}

func (s *memStore) GetExamplesForWords(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]string, error) {
	return s.grouped(s.examples, s.examplesErr, ids)
}

func (s *memStore) GetSynonymsForWords(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]string, error) {
	return s.grouped(s.synonyms, s.synonymsErr, ids)
}

func (s *memStore) AddExamples(ctx context.Context, wordID uuid.UUID, examples []string) (int, error) {
	if s.addExamplesErr != nil {
		return 0, s.addExamplesErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.examples[wordID]) > 0 || len(examples) == 0 {
		return 0, nil
	}
	s.examples[wordID] = slices.Clone(examples)
	return len(examples), nil
}

func (s *memStore) grouped(src map[uuid.UUID][]string, err error, ids []uuid.UUID) (map[uuid.UUID][]string, error) {
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID][]string)
	for _, id := range ids {
		if v, ok := src[id]; ok {
			out[id] = slices.Clone(v)
		}
	}
	return out, nil
}

// progress

type memProgressStore struct{ *memStore }

func (s memProgressStore) Get(ctx context.Context, userID, wordID uuid.UUID) (*domain.WordProgress, error) {
	if p := s.progressFor(userID, wordID); p != nil {
		return p, nil
	}
	return nil, store.ErrProgressNotFound
}

func (s memProgressStore) GetForUpdate(ctx context.Context, userID, wordID uuid.UUID) (*domain.WordProgress, error) {
	return s.Get(ctx, userID, wordID)
}

func (s memProgressStore) GetForWords(
	ctx context.Context,
	userID uuid.UUID,
	wordIDs []uuid.UUID,
) (map[uuid.UUID]*domain.WordProgress, error) {
	out := make(map[uuid.UUID]*domain.WordProgress)
	for _, id := range wordIDs {
		if p := s.progressFor(userID, id); p != nil {
			out[id] = p
		}
	}
	return out, nil
}

func (s memProgressStore) Upsert(ctx context.Context, p *domain.WordProgress) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.setProgress(p)
	return nil
}

func (s memProgressStore) BulkInsertDefaults(ctx context.Context, rows []*domain.WordProgress) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inserted := 0
	for _, r := range rows {
		key := [2]uuid.UUID{r.UserID, r.WordID}
		if _, ok := s.progress[key]; ok {
			continue
		}
		cp := *r
		s.progress[key] = &cp
		inserted++
	}
	return inserted, nil
}

func (s memProgressStore) ListsWithDueWords(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit, offset int,
) ([]domain.ListDueCount, error) {
	return nil, nil
}

func (s memProgressStore) CountListsWithDueWords(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	return 0, nil
}

func (s memProgressStore) DueWordsByList(ctx context.Context, userID uuid.UUID, now time.Time) ([]domain.ListDueWords, error) {
	return nil, nil
}

func (s memProgressStore) Stats(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.ReviewStats, error) {
	return &domain.ReviewStats{}, nil
}

func (s memProgressStore) WithTx(tx *sql.Tx) store.ProgressStore { return s }

// sessions

type memSessionStore struct{ *memStore }

func (s memSessionStore) Create(ctx context.Context, rs *domain.RevisionSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.sessions {
		if other.UserID == rs.UserID && other.Status.IsActive() {
			return store.ErrActiveSessionExists
		}
	}
	cp := *rs
	s.sessions[rs.ID] = &cp
	return nil
}

func (s memSessionStore) Get(ctx context.Context, id, userID uuid.UUID) (*domain.RevisionSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs, ok := s.sessions[id]
	if !ok || rs.UserID != userID {
		return nil, store.ErrSessionNotFound
	}
	cp := *rs
	return &cp, nil
}

func (s memSessionStore) GetForUpdate(ctx context.Context, id, userID uuid.UUID) (*domain.RevisionSession, error) {
	return s.Get(ctx, id, userID)
}

func (s memSessionStore) FindActive(ctx context.Context, userID uuid.UUID) (*domain.RevisionSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *domain.RevisionSession
	for _, rs := range s.sessions {
		if rs.UserID == userID && rs.Status.IsActive() &&
			(found == nil || rs.StartedAt.After(found.StartedAt)) {
			found = rs
		}
	}
	if found == nil {
		return nil, store.ErrSessionNotFound
	}
	cp := *found
	return &cp, nil
}

func (s memSessionStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.SessionStatus,
	completedAt *time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs, ok := s.sessions[id]
	if !ok {
		return store.ErrSessionNotFound
	}
	rs.Status = status
	rs.CompletedAt = completedAt
	return nil
}

func (s memSessionStore) CountCompleted(ctx context.Context, userID uuid.UUID) (int, error) {
	return 0, nil
}

func (s memSessionStore) WithTx(tx *sql.Tx) store.SessionStore { return s }

// results

type memResultStore struct{ *memStore }

func (s memResultStore) Append(ctx context.Context, r *domain.SessionWordResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	return nil
}

func (s memResultStore) ListForSession(ctx context.Context, sessionID uuid.UUID) ([]*domain.SessionWordResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.SessionWordResult
	for _, r := range s.results {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s memResultStore) CountByResult(ctx context.Context, userID uuid.UUID) (int, int, error) {
	return 0, 0, nil
}

func (s memResultStore) WithTx(tx *sql.Tx) store.ResultStore { return s }

// reviewFixture wires a Service over a memStore and a mocked database used
// only for transaction boundaries.
type reviewFixture struct {
	mem     *memStore
	dbMock  sqlmock.Sqlmock
	manager *SessionManager
	service Service
	now     time.Time
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	return newReviewFixtureWithGenerator(t, nil, 0)
}

// newReviewFixtureWithGenerator is newReviewFixture with example generation
// enabled. A zero timeout keeps DefaultGenerationTimeout.
func newReviewFixtureWithGenerator(t *testing.T, gen ExampleGenerator, timeout time.Duration) *reviewFixture {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	dbMock.MatchExpectationsInOrder(false)

	f := &reviewFixture{
		mem:    newMemStore(),
		dbMock: dbMock,
		now:    time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	progress := memProgressStore{f.mem}
	sessions := memSessionStore{f.mem}
	results := memResultStore{f.mem}

	joiner := NewEnrichmentJoiner(f.mem, gen, nil, nil).WithGenerationTimeout(timeout)
	resolver := NewDueSetResolver(f.mem, progress, joiner, nil, nil)
	f.manager = NewSessionManager(db, resolver, sessions, results, progress, srs.NewDefaultService(), nil, nil)
	f.service = NewService(resolver, f.manager, progress, sessions, results,
		Limits{DefaultLimit: 20, MaxLimit: 100}, nil,
		WithClock(func() time.Time { return f.now }))
	return f
}

// expectTx registers n transactions that commit.
func (f *reviewFixture) expectTx(n int) {
	for range n {
		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()
	}
}

// expectRollback registers n transactions that roll back.
func (f *reviewFixture) expectRollback(n int) {
	for range n {
		f.dbMock.ExpectBegin()
		f.dbMock.ExpectRollback()
	}
}
