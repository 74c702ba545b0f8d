package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
)

// ProgressStore defines persistence for per-(user, word) scheduling state.
// Upsert is the only write path for an existing row.
type ProgressStore interface {
	// Get retrieves the progress of one word for one user.
	// Returns ErrProgressNotFound if the word has never been encountered.
	Get(ctx context.Context, userID, wordID uuid.UUID) (*domain.WordProgress, error)

	// GetForUpdate is Get with a row-level lock (SELECT ... FOR UPDATE).
	// It must be called inside a transaction.
	GetForUpdate(ctx context.Context, userID, wordID uuid.UUID) (*domain.WordProgress, error)

	// GetForWords returns the existing progress rows for wordIDs keyed by word id.
	GetForWords(ctx context.Context, userID uuid.UUID, wordIDs []uuid.UUID) (map[uuid.UUID]*domain.WordProgress, error)

	// Upsert inserts or fully replaces the progress row keyed on (user, word).
	Upsert(ctx context.Context, progress *domain.WordProgress) error

	// BulkInsertDefaults inserts the given rows, silently skipping any
	// (user, word) pair that already exists. Concurrent callers racing on the
	// same pairs never see an error. Returns the number of rows inserted.
	BulkInsertDefaults(ctx context.Context, rows []*domain.WordProgress) (int, error)

	// ListsWithDueWords returns, for every list the user has started studying,
	// its word total and how many of its words are due at now. Only lists with
	// at least one due word are returned, ordered by list name. Words of such a
	// list that have no progress row yet count as due.
	ListsWithDueWords(ctx context.Context, userID uuid.UUID, now time.Time, limit, offset int) ([]domain.ListDueCount, error)

	// CountListsWithDueWords returns the total number of rows ListsWithDueWords can page over.
	CountListsWithDueWords(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)

	// DueWordsByList returns the user's due words that already have progress,
	// grouped by list.
	DueWordsByList(ctx context.Context, userID uuid.UUID, now time.Time) ([]domain.ListDueWords, error)

	// Stats returns aggregate progress counters for the user.
	Stats(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.ReviewStats, error)

	// WithTx returns a ProgressStore bound to tx.
	WithTx(tx *sql.Tx) ProgressStore
}
