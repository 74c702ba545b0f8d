package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/vocab-review/internal/platform/postgres"
	"github.com/phrazzld/vocab-review/internal/store"
	"github.com/stretchr/testify/assert"
)

func newPgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "test_table",
		ColumnName:     "test_column",
		ConstraintName: constraint,
	}
}

// mockResult implements sql.Result for testing
type mockResult struct {
	rowsAffected int64
	err          error
}

func (m mockResult) LastInsertId() (int64, error) { return 0, m.err }
func (m mockResult) RowsAffected() (int64, error) { return m.rowsAffected, m.err }

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"unique violation", newPgError("23505", "user_word_progress_pkey"), store.ErrDuplicate},
		{"active session", newPgError("23505", "idx_revision_sessions_one_active"), store.ErrActiveSessionExists},
		{"foreign key", newPgError("23503", "vocabulary_list_id_fkey"), store.ErrInvalidEntity},
		{"check", newPgError("23514", "user_word_progress_interval_check"), store.ErrInvalidEntity},
		{"not null", newPgError("23502", ""), store.ErrInvalidEntity},
		{"wrapped unique", fmt.Errorf("exec: %w", newPgError("23505", "x")), store.ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mapped := postgres.MapError(tt.err)
			assert.ErrorIs(t, mapped, tt.target)
			assert.ErrorIs(t, mapped, tt.err, "original error must stay in the chain")
		})
	}
}

func TestMapError_ActiveSessionIsAlsoDuplicate(t *testing.T) {
	t.Parallel()

	mapped := postgres.MapError(newPgError("23505", "idx_revision_sessions_one_active"))
	assert.True(t, store.IsDuplicateError(mapped))
}

func TestMapError_Passthrough(t *testing.T) {
	t.Parallel()

	assert.NoError(t, postgres.MapError(nil))

	plain := errors.New("connection reset")
	assert.Same(t, plain, postgres.MapError(plain))

	other := newPgError("40001", "")
	assert.Equal(t, error(other), postgres.MapError(other))
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"unique", newPgError("23505", "c"), true},
		{"wrapped unique", fmt.Errorf("wrap: %w", newPgError("23505", "c")), true},
		{"foreign key", newPgError("23503", "c"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, postgres.IsUniqueViolation(tt.err))
		})
	}
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	notFound := errors.New("not found")

	assert.NoError(t, postgres.CheckRowsAffected(mockResult{rowsAffected: 1}, notFound))
	assert.Same(t, notFound, postgres.CheckRowsAffected(mockResult{rowsAffected: 0}, notFound))
	assert.Error(t, postgres.CheckRowsAffected(nil, notFound))

	err := postgres.CheckRowsAffected(mockResult{err: errors.New("driver")}, notFound)
	assert.ErrorContains(t, err, "failed to get rows affected")
}
