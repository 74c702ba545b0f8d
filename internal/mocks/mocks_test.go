package mocks_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/mocks"
	"github.com/phrazzld/vocab-review/internal/service/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGenerator(t *testing.T) {
	t.Parallel()

	gen := &mocks.MockGenerator{Examples: []string{"An example."}}

	examples, err := gen.GenerateExamples(context.Background(), "ephemeral", "short-lived")
	require.NoError(t, err)
	assert.Equal(t, []string{"An example."}, examples)

	examples[0] = "mutated"
	again, err := gen.GenerateExamples(context.Background(), "lucid", "clear")
	require.NoError(t, err)
	assert.Equal(t, []string{"An example."}, again)
	assert.Equal(t, []string{"ephemeral", "lucid"}, gen.Terms())

	gen.Err = assert.AnError
	_, err = gen.GenerateExamples(context.Background(), "x", "y")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestMockReviewService_FallsBackToErr(t *testing.T) {
	t.Parallel()

	svc := &mocks.MockReviewService{Err: review.ErrNoWordsDue}
	_, err := svc.StartSession(context.Background(), uuid.New(), uuid.New(), "flashcard", false)
	assert.ErrorIs(t, err, review.ErrNoWordsDue)

	svc.GetActiveSessionFn = nil
	session, err := svc.GetActiveSession(context.Background(), uuid.New())
	assert.Nil(t, session)
	assert.ErrorIs(t, err, review.ErrNoWordsDue)
}

func TestMockJWTServiceForUser(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	claims, err := mocks.NewMockJWTServiceForUser(userID).ValidateToken(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}
