package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/phrazzld/vocab-review/internal/platform/logger"
	"github.com/phrazzld/vocab-review/internal/store"
)

// PostgresResultStore implements store.ResultStore.
type PostgresResultStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresResultStore creates a session result store over db.
// If logger is nil, a default logger will be used.
func NewPostgresResultStore(db store.DBTX, logger *slog.Logger) *PostgresResultStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresResultStore{
		db:     db,
		logger: logger.With(slog.String("component", "result_store")),
	}
}

var _ store.ResultStore = (*PostgresResultStore)(nil)

// WithTx implements store.ResultStore.
func (s *PostgresResultStore) WithTx(tx *sql.Tx) store.ResultStore {
	return &PostgresResultStore{
		db:     tx,
		logger: s.logger,
	}
}

// Append implements store.ResultStore.
func (s *PostgresResultStore) Append(ctx context.Context, r *domain.SessionWordResult) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !r.Result.Valid() {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrInvalidReviewResult)
	}

	query := `
		INSERT INTO session_word_results (id, session_id, word_id, result, response_time_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.SessionID, r.WordID, string(r.Result), r.ResponseTimeMs, r.CreatedAt)
	if err != nil {
		log.Error("failed to append session result",
			slog.String("error", err.Error()),
			slog.String("session_id", r.SessionID.String()),
			slog.String("word_id", r.WordID.String()))
		return MapError(err)
	}
	return nil
}

// ListForSession implements store.ResultStore.
func (s *PostgresResultStore) ListForSession(ctx context.Context, sessionID uuid.UUID) ([]*domain.SessionWordResult, error) {
	query := `
		SELECT id, session_id, word_id, result, response_time_ms, created_at
		FROM session_word_results
		WHERE session_id = $1
		ORDER BY seq
	`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list session results",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]*domain.SessionWordResult, 0)
	for rows.Next() {
		var r domain.SessionWordResult
		var result string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.WordID, &result, &r.ResponseTimeMs, &r.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		r.Result = domain.ReviewResult(result)
		results = append(results, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return results, nil
}

// CountByResult implements store.ResultStore.
func (s *PostgresResultStore) CountByResult(ctx context.Context, userID uuid.UUID) (correct, incorrect int, err error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE r.result = 'correct'),
			COUNT(*) FILTER (WHERE r.result = 'incorrect')
		FROM session_word_results r
		JOIN revision_sessions s ON s.id = r.session_id
		WHERE s.user_id = $1
	`
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&correct, &incorrect); err != nil {
		return 0, 0, MapError(err)
	}
	return correct, incorrect, nil
}
