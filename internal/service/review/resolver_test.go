package review

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMemResolver(mem *memStore) *DueSetResolver {
	return NewDueSetResolver(mem, memProgressStore{mem}, nil, nil, nil)
}

func wordIDs(words []domain.EnrichedWord) []uuid.UUID {
	ids := make([]uuid.UUID, len(words))
	for i, w := range words {
		ids[i] = w.ID
	}
	return ids
}

func TestDueSetResolver_ResolveDue_FiltersByNextReviewDate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	userID, listID := uuid.New(), uuid.New()

	mem := newMemStore()
	ids := mem.addList(listID, "past", "future", "unseen")
	mem.setProgress(&domain.WordProgress{
		UserID: userID, WordID: ids[0], NextReviewDate: now.Add(-time.Hour), IntervalDays: 1, EaseFactor: 2.5,
	})
	mem.setProgress(&domain.WordProgress{
		UserID: userID, WordID: ids[1], NextReviewDate: now.Add(24 * time.Hour), IntervalDays: 1, EaseFactor: 2.5,
	})

	res, err := newMemResolver(mem).ResolveDue(ctx, userID, listID, 10, now)
	require.NoError(t, err)

	assert.Equal(t, 3, res.ListSize)
	assert.Equal(t, []uuid.UUID{ids[0], ids[2]}, wordIDs(res.Words))

	created := mem.progressFor(userID, ids[2])
	require.NotNil(t, created, "unseen word gets a default progress row")
	assert.True(t, created.NextReviewDate.Equal(now))
	assert.Equal(t, domain.DefaultBulkIntervalDays, created.IntervalDays)
	assert.Equal(t, 0, created.Repetitions)
	assert.InDelta(t, domain.DefaultEaseFactor, created.EaseFactor, 1e-9)
}

func TestDueSetResolver_ResolveDue_DueAtExactlyNow(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	userID, listID := uuid.New(), uuid.New()

	mem := newMemStore()
	ids := mem.addList(listID, "edge")
	mem.setProgress(&domain.WordProgress{
		UserID: userID, WordID: ids[0], NextReviewDate: now, IntervalDays: 6, EaseFactor: 2.6,
	})

	res, err := newMemResolver(mem).ResolveDue(context.Background(), userID, listID, 10, now)
	require.NoError(t, err)
	assert.Len(t, res.Words, 1)
}

func TestDueSetResolver_ResolveDue_LimitKeepsListOrder(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	userID, listID := uuid.New(), uuid.New()

	mem := newMemStore()
	ids := mem.addList(listID, "a", "b", "c", "d", "e")

	res, err := newMemResolver(mem).ResolveDue(context.Background(), userID, listID, 3, now)
	require.NoError(t, err)
	assert.Equal(t, ids[:3], wordIDs(res.Words))
	assert.Equal(t, 5, mem.progressCount(), "every word of the list is backfilled")
}

func TestDueSetResolver_ResolveDue_EmptyResults(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	userID := uuid.New()

	mem := newMemStore()
	listID := uuid.New()
	mem.addList(listID, "a")

	tests := []struct {
		name   string
		listID uuid.UUID
		limit  int
	}{
		{"empty list", uuid.New(), 10},
		{"zero limit", listID, 0},
		{"negative limit", listID, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newMemResolver(mem).ResolveDue(context.Background(), userID, tt.listID, tt.limit, now)
			require.NoError(t, err)
			assert.NotNil(t, res.Words)
			assert.Empty(t, res.Words)
		})
	}
	assert.Zero(t, mem.progressCount(), "nothing is backfilled without a positive limit")
}

func TestDueSetResolver_ResolveDue_ConcurrentCallersCreateOneRowPerWord(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	userID, listID := uuid.New(), uuid.New()

	mem := newMemStore()
	mem.addList(listID, "a", "b", "c", "d")
	resolver := newMemResolver(mem)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = resolver.ResolveDue(context.Background(), userID, listID, 10, now)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 4, mem.progressCount())
}

func TestDueSetResolver_ResolveDue_StoreErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	userID, listID := uuid.New(), uuid.New()
	word := domain.Word{ID: uuid.New(), ListID: listID, Term: "cat"}
	dbErr := errors.New("connection refused")

	t.Run("words lookup", func(t *testing.T) {
		vocab := new(MockVocabularyStore)
		vocab.On("GetWordsByList", mock.Anything, listID).Return(nil, dbErr)

		_, err := NewDueSetResolver(vocab, new(MockProgressStore), nil, nil, nil).
			ResolveDue(ctx, userID, listID, 10, now)
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("progress lookup", func(t *testing.T) {
		vocab := new(MockVocabularyStore)
		vocab.On("GetWordsByList", mock.Anything, listID).Return([]domain.Word{word}, nil)
		progress := new(MockProgressStore)
		progress.On("GetForWords", mock.Anything, userID, []uuid.UUID{word.ID}).Return(nil, dbErr)

		_, err := NewDueSetResolver(vocab, progress, nil, nil, nil).ResolveDue(ctx, userID, listID, 10, now)
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("bulk insert", func(t *testing.T) {
		vocab := new(MockVocabularyStore)
		vocab.On("GetWordsByList", mock.Anything, listID).Return([]domain.Word{word}, nil)
		progress := new(MockProgressStore)
		progress.On("GetForWords", mock.Anything, userID, []uuid.UUID{word.ID}).
			Return(map[uuid.UUID]*domain.WordProgress{}, nil)
		progress.On("BulkInsertDefaults", mock.Anything, mock.MatchedBy(func(rows []*domain.WordProgress) bool {
			return len(rows) == 1 && rows[0].WordID == word.ID
		})).Return(0, dbErr)

		_, err := NewDueSetResolver(vocab, progress, nil, nil, nil).ResolveDue(ctx, userID, listID, 10, now)
		assert.ErrorIs(t, err, dbErr)
		progress.AssertExpectations(t)
	})
}

func TestDueSetResolver_ResolveAll(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	userID, listID := uuid.New(), uuid.New()

	mem := newMemStore()
	ids := mem.addList(listID, "a", "b", "c")
	for _, id := range ids {
		mem.setProgress(&domain.WordProgress{
			UserID: userID, WordID: id, NextReviewDate: now.Add(72 * time.Hour), IntervalDays: 3, EaseFactor: 2.5,
		})
	}

	res, err := newMemResolver(mem).ResolveAll(context.Background(), listID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, res.ListSize)
	assert.Equal(t, ids[:2], wordIDs(res.Words))

	res, err = newMemResolver(mem).ResolveAll(context.Background(), listID, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Words)
}
