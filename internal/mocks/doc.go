// Package mocks provides hand-written mock implementations of the
// application's interfaces for tests.
//
// Each mock has one function field per interface method (GetDueWordsFn,
// ValidateTokenFn, ...). A nil function field falls back to the mock's
// default values, so tests only set what they exercise:
//
//	svc := &mocks.MockReviewService{
//	    GetDueWordsFn: func(ctx context.Context, userID, listID uuid.UUID, limit int) ([]domain.EnrichedWord, error) {
//	        return nil, review.ErrEmptyList
//	    },
//	}
package mocks
