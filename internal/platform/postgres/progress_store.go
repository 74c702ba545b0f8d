package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/phrazzld/vocab-review/internal/platform/logger"
	"github.com/phrazzld/vocab-review/internal/store"
)

// bulkInsertChunkSize bounds the rows per INSERT so that the statement stays
// well under PostgreSQL's parameter limit.
const bulkInsertChunkSize = 500

const progressColumns = `user_id, word_id, next_review_date, interval_days, ease_factor,
	repetitions, correct_count, incorrect_count, last_reviewed_at, created_at, updated_at`

// PostgresProgressStore implements store.ProgressStore.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a progress store over db.
// If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// WithTx implements store.ProgressStore.
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &PostgresProgressStore{
		db:     tx,
		logger: s.logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row rowScanner) (*domain.WordProgress, error) {
	var p domain.WordProgress
	var lastReviewed sql.NullTime
	err := row.Scan(
		&p.UserID,
		&p.WordID,
		&p.NextReviewDate,
		&p.IntervalDays,
		&p.EaseFactor,
		&p.Repetitions,
		&p.CorrectCount,
		&p.IncorrectCount,
		&lastReviewed,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastReviewed.Valid {
		t := lastReviewed.Time
		p.LastReviewedAt = &t
	}
	return &p, nil
}

// Get implements store.ProgressStore.
func (s *PostgresProgressStore) Get(ctx context.Context, userID, wordID uuid.UUID) (*domain.WordProgress, error) {
	return s.get(ctx, userID, wordID, false)
}

// GetForUpdate implements store.ProgressStore.
func (s *PostgresProgressStore) GetForUpdate(ctx context.Context, userID, wordID uuid.UUID) (*domain.WordProgress, error) {
	return s.get(ctx, userID, wordID, true)
}

func (s *PostgresProgressStore) get(
	ctx context.Context,
	userID, wordID uuid.UUID,
	forUpdate bool,
) (*domain.WordProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + progressColumns + `
		FROM user_word_progress
		WHERE user_id = $1 AND word_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	p, err := scanProgress(s.db.QueryRowContext(ctx, query, userID, wordID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProgressNotFound
		}
		log.Error("failed to get word progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("word_id", wordID.String()))
		return nil, MapError(err)
	}
	return p, nil
}

// GetForWords implements store.ProgressStore.
func (s *PostgresProgressStore) GetForWords(
	ctx context.Context,
	userID uuid.UUID,
	wordIDs []uuid.UUID,
) (map[uuid.UUID]*domain.WordProgress, error) {
	out := make(map[uuid.UUID]*domain.WordProgress, len(wordIDs))
	if len(wordIDs) == 0 {
		return out, nil
	}

	query := `SELECT ` + progressColumns + `
		FROM user_word_progress
		WHERE user_id = $1 AND word_id = ANY($2)`

	rows, err := s.db.QueryContext(ctx, query, userID, wordIDs)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query progress for words",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("word_count", len(wordIDs)))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, MapError(err)
		}
		out[p.WordID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}

// Upsert implements store.ProgressStore.
func (s *PostgresProgressStore) Upsert(ctx context.Context, p *domain.WordProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := p.Validate(); err != nil {
		log.Warn("word progress validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("word_id", p.WordID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO user_word_progress (` + progressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, word_id) DO UPDATE SET
			next_review_date = EXCLUDED.next_review_date,
			interval_days = EXCLUDED.interval_days,
			ease_factor = EXCLUDED.ease_factor,
			repetitions = EXCLUDED.repetitions,
			correct_count = EXCLUDED.correct_count,
			incorrect_count = EXCLUDED.incorrect_count,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			updated_at = EXCLUDED.updated_at
	`

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = p.UpdatedAt
	}

	_, err := s.db.ExecContext(ctx, query,
		p.UserID,
		p.WordID,
		p.NextReviewDate,
		p.IntervalDays,
		p.EaseFactor,
		p.Repetitions,
		p.CorrectCount,
		p.IncorrectCount,
		p.LastReviewedAt,
		createdAt,
		p.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert word progress",
			slog.String("error", err.Error()),
			slog.String("user_id", p.UserID.String()),
			slog.String("word_id", p.WordID.String()))
		return MapError(err)
	}

	log.Debug("word progress upserted",
		slog.String("user_id", p.UserID.String()),
		slog.String("word_id", p.WordID.String()),
		slog.Int("interval_days", p.IntervalDays),
		slog.Int("repetitions", p.Repetitions))
	return nil
}

// BulkInsertDefaults implements store.ProgressStore.
func (s *PostgresProgressStore) BulkInsertDefaults(ctx context.Context, rows []*domain.WordProgress) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	inserted := 0
	for start := 0; start < len(rows); start += bulkInsertChunkSize {
		end := min(start+bulkInsertChunkSize, len(rows))
		chunk := rows[start:end]

		query, args := buildBulkInsert(chunk)
		result, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			log.Error("failed to bulk insert default progress",
				slog.String("error", err.Error()),
				slog.Int("row_count", len(chunk)))
			return inserted, MapError(err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("failed to get rows affected: %w", err)
		}
		inserted += int(n)
	}

	if skipped := len(rows) - inserted; skipped > 0 {
		log.Debug("default progress rows already existed",
			slog.Int("requested", len(rows)),
			slog.Int("skipped", skipped))
	}
	return inserted, nil
}

// buildBulkInsert renders one multi-row INSERT ... ON CONFLICT DO NOTHING.
func buildBulkInsert(rows []*domain.WordProgress) (string, []any) {
	const cols = 8
	var b strings.Builder
	b.WriteString(`INSERT INTO user_word_progress
		(user_id, word_id, next_review_date, interval_days, ease_factor, repetitions, created_at, updated_at)
		VALUES `)

	args := make([]any, 0, len(rows)*cols)
	for i, r := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * cols
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			n+1, n+2, n+3, n+4, n+5, n+6, n+7, n+8)
		args = append(args,
			r.UserID, r.WordID, r.NextReviewDate, r.IntervalDays,
			r.EaseFactor, r.Repetitions, r.CreatedAt, r.UpdatedAt)
	}
	b.WriteString(` ON CONFLICT (user_id, word_id) DO NOTHING`)
	return b.String(), args
}

// listsWithDueWordsCTE computes totals and due counts per list the user has
// progress in. $1 is the user, $2 the evaluation time.
const listsWithDueWordsCTE = `
	WITH studied AS (
		SELECT DISTINCT v.list_id
		FROM user_word_progress p
		JOIN vocabulary v ON v.id = p.word_id
		WHERE p.user_id = $1
	), counts AS (
		SELECT l.id, l.title,
			COUNT(v.id) AS total_words,
			COUNT(v.id) FILTER (WHERE p.word_id IS NULL OR p.next_review_date <= $2) AS due_count
		FROM vocab_lists l
		JOIN studied s ON s.list_id = l.id
		JOIN vocabulary v ON v.list_id = l.id
		LEFT JOIN user_word_progress p ON p.word_id = v.id AND p.user_id = $1
		GROUP BY l.id, l.title
	)`

// ListsWithDueWords implements store.ProgressStore.
func (s *PostgresProgressStore) ListsWithDueWords(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit, offset int,
) ([]domain.ListDueCount, error) {
	query := listsWithDueWordsCTE + `
		SELECT id, title, total_words, due_count
		FROM counts
		WHERE due_count > 0
		ORDER BY title, id
		LIMIT $3 OFFSET $4`

	rows, err := s.db.QueryContext(ctx, query, userID, now, limit, offset)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query lists with due words",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	lists := make([]domain.ListDueCount, 0)
	for rows.Next() {
		var l domain.ListDueCount
		if err := rows.Scan(&l.ListID, &l.ListName, &l.TotalWords, &l.DueCount); err != nil {
			return nil, MapError(err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return lists, nil
}

// CountListsWithDueWords implements store.ProgressStore.
func (s *PostgresProgressStore) CountListsWithDueWords(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	query := listsWithDueWordsCTE + `
		SELECT COUNT(*) FROM counts WHERE due_count > 0`

	var total int
	if err := s.db.QueryRowContext(ctx, query, userID, now).Scan(&total); err != nil {
		return 0, MapError(err)
	}
	return total, nil
}

// DueWordsByList implements store.ProgressStore.
func (s *PostgresProgressStore) DueWordsByList(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]domain.ListDueWords, error) {
	query := `
		SELECT l.id, l.title, v.id, v.term
		FROM user_word_progress p
		JOIN vocabulary v ON v.id = p.word_id
		JOIN vocab_lists l ON l.id = v.list_id
		WHERE p.user_id = $1 AND p.next_review_date <= $2
		ORDER BY l.title, l.id, v.created_at, v.id
	`

	rows, err := s.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query due words by list",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	groups := make([]domain.ListDueWords, 0)
	for rows.Next() {
		var listID uuid.UUID
		var title string
		var word domain.WordRef
		if err := rows.Scan(&listID, &title, &word.ID, &word.Term); err != nil {
			return nil, MapError(err)
		}
		if n := len(groups); n == 0 || groups[n-1].ListID != listID {
			groups = append(groups, domain.ListDueWords{ListID: listID, ListName: title})
		}
		last := &groups[len(groups)-1]
		last.Words = append(last.Words, word)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return groups, nil
}

// Stats implements store.ProgressStore.
func (s *PostgresProgressStore) Stats(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.ReviewStats, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE next_review_date <= $2),
			COUNT(*) FILTER (WHERE interval_days >= $3)
		FROM user_word_progress
		WHERE user_id = $1
	`

	var stats domain.ReviewStats
	err := s.db.QueryRowContext(ctx, query, userID, now, domain.MasteredIntervalDays).
		Scan(&stats.TrackedWords, &stats.DueNow, &stats.MasteredWords)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to compute progress stats",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	return &stats, nil
}
