package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/phrazzld/vocab-review/internal/platform/logger"
	"github.com/phrazzld/vocab-review/internal/store"
)

// word_ids is read back as JSON: database/sql hands uuid[] over as text.
const sessionColumns = `id, user_id, vocab_list_id, session_type, status, total_words,
	to_jsonb(word_ids), started_at, completed_at`

// PostgresSessionStore implements store.SessionStore.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a session store over db.
// If logger is nil, a default logger will be used.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

var _ store.SessionStore = (*PostgresSessionStore)(nil)

// WithTx implements store.SessionStore.
func (s *PostgresSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return &PostgresSessionStore{
		db:     tx,
		logger: s.logger,
	}
}

func scanSession(row rowScanner) (*domain.RevisionSession, error) {
	var rs domain.RevisionSession
	var sessionType, status string
	var wordIDs []byte
	var completedAt sql.NullTime

	err := row.Scan(
		&rs.ID,
		&rs.UserID,
		&rs.VocabListID,
		&sessionType,
		&status,
		&rs.TotalWords,
		&wordIDs,
		&rs.StartedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(wordIDs, &rs.WordIDs); err != nil {
		return nil, fmt.Errorf("failed to decode session word ids: %w", err)
	}
	rs.SessionType = domain.SessionType(sessionType)
	rs.Status = domain.SessionStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		rs.CompletedAt = &t
	}
	return &rs, nil
}

// Create implements store.SessionStore.
func (s *PostgresSessionStore) Create(ctx context.Context, session *domain.RevisionSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during create",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO revision_sessions
			(id, user_id, vocab_list_id, session_type, status, total_words, word_ids, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.VocabListID,
		string(session.SessionType),
		string(session.Status),
		session.TotalWords,
		session.WordIDs,
		session.StartedAt,
		session.CompletedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrActiveSessionExists) {
			log.Info("user already has an active session",
				slog.String("user_id", session.UserID.String()))
			return mapped
		}
		log.Error("failed to create session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()),
			slog.String("user_id", session.UserID.String()))
		return mapped
	}

	log.Info("session created",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", session.UserID.String()),
		slog.String("session_type", string(session.SessionType)),
		slog.Int("total_words", session.TotalWords))
	return nil
}

// Get implements store.SessionStore.
func (s *PostgresSessionStore) Get(ctx context.Context, id, userID uuid.UUID) (*domain.RevisionSession, error) {
	return s.get(ctx, id, userID, false)
}

// GetForUpdate implements store.SessionStore.
func (s *PostgresSessionStore) GetForUpdate(ctx context.Context, id, userID uuid.UUID) (*domain.RevisionSession, error) {
	return s.get(ctx, id, userID, true)
}

func (s *PostgresSessionStore) get(
	ctx context.Context,
	id, userID uuid.UUID,
	forUpdate bool,
) (*domain.RevisionSession, error) {
	query := `SELECT ` + sessionColumns + `
		FROM revision_sessions
		WHERE id = $1 AND user_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	rs, err := scanSession(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, MapError(err)
	}
	return rs, nil
}

// FindActive implements store.SessionStore.
func (s *PostgresSessionStore) FindActive(ctx context.Context, userID uuid.UUID) (*domain.RevisionSession, error) {
	query := `SELECT ` + sessionColumns + `
		FROM revision_sessions
		WHERE user_id = $1 AND status IN ('in_progress', 'interrupted')
		ORDER BY started_at DESC
		LIMIT 1`

	rs, err := scanSession(s.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to find active session",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	return rs, nil
}

// UpdateStatus implements store.SessionStore.
func (s *PostgresSessionStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.SessionStatus,
	completedAt *time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.Valid() {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrInvalidSessionStatus)
	}

	query := `UPDATE revision_sessions SET status = $2, completed_at = $3 WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, id, string(status), completedAt)
	if err != nil {
		log.Error("failed to update session status",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrSessionNotFound); err != nil {
		return err
	}

	log.Info("session status updated",
		slog.String("session_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// CountCompleted implements store.SessionStore.
func (s *PostgresSessionStore) CountCompleted(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM revision_sessions WHERE user_id = $1 AND status = 'completed'`

	var n int
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, MapError(err)
	}
	return n, nil
}
