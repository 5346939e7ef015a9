package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenKind selects the claim set and signing secret for a token.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenClaims is the verified claim set of a signed token.
type TokenClaims struct {
	UserID    uuid.UUID
	Kind      TokenKind
	JTI       string
	ExpiresAt time.Time
}

// TokenManager issues and verifies signed tokens. Access and refresh
// tokens are signed with distinct secrets.
type TokenManager interface {
	Issue(kind TokenKind, userID uuid.UUID, ttl time.Duration) (string, error)
	// Verify fails with ErrTokenExpired when only the expiry check
	// fails, and ErrTokenInvalid for every other failure.
	Verify(tokenString string, kind TokenKind) (TokenClaims, error)
}
