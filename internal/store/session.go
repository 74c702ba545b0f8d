package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
)

// SessionStore defines persistence for revision sessions.
type SessionStore interface {
	// Create saves a new session.
	// Returns ErrActiveSessionExists if the user already has an active session.
	Create(ctx context.Context, session *domain.RevisionSession) error

	// Get retrieves a session owned by userID.
	// Returns ErrSessionNotFound if it does not exist or belongs to someone else.
	Get(ctx context.Context, id, userID uuid.UUID) (*domain.RevisionSession, error)

	// GetForUpdate is Get with a row-level lock. It must be called inside a transaction.
	GetForUpdate(ctx context.Context, id, userID uuid.UUID) (*domain.RevisionSession, error)

	// FindActive returns the most recently started in_progress or interrupted
	// session of the user. Returns ErrSessionNotFound if there is none.
	FindActive(ctx context.Context, userID uuid.UUID) (*domain.RevisionSession, error)

	// UpdateStatus changes a session's status and completion time.
	// Returns ErrSessionNotFound if the session does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SessionStatus, completedAt *time.Time) error

	// CountCompleted returns the number of completed sessions of the user.
	CountCompleted(ctx context.Context, userID uuid.UUID) (int, error)

	// WithTx returns a SessionStore bound to tx.
	WithTx(tx *sql.Tx) SessionStore
}

// ResultStore defines persistence for append-only session results.
type ResultStore interface {
	// Append records one answer.
	Append(ctx context.Context, result *domain.SessionWordResult) error

	// ListForSession returns all results of a session in submission order.
	ListForSession(ctx context.Context, sessionID uuid.UUID) ([]*domain.SessionWordResult, error)

	// CountByResult returns the user's lifetime correct and incorrect answer counts.
	CountByResult(ctx context.Context, userID uuid.UUID) (correct, incorrect int, err error)

	// WithTx returns a ResultStore bound to tx.
	WithTx(tx *sql.Tx) ResultStore
}
