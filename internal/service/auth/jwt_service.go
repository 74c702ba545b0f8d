// Package auth verifies the bearer tokens that the external authentication
// service issues to learners. The learner id is the token's sub claim.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService validates and, for tooling and tests, issues HMAC signed tokens.
type JWTService interface {
	// GenerateToken creates a signed token whose subject is userID.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken verifies tokenString and returns its claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid, ErrInvalidSubject or
	// ErrInvalidToken when the token cannot be accepted.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the validated claims of a token.
type Claims struct {
	UserID    uuid.UUID
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
