package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenStore defines persistence operations for refresh token
// records. Only fingerprints of issued tokens are ever stored.
type RefreshTokenStore interface {
	Create(ctx context.Context, token RefreshToken) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]RefreshToken, error)
	// Delete removes a record by id and reports whether it existed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	// Rotate deletes the old record and inserts the replacement in one
	// transaction. Returns ErrNotFound when the old record is already
	// gone, which is how a concurrent rotation loser observes defeat.
	Rotate(ctx context.Context, oldID uuid.UUID, next RefreshToken) error
}

// RefreshToken is the persisted fingerprint of an issued refresh token.
type RefreshToken struct {
	ID          uuid.UUID
	Fingerprint string
	UserID      uuid.UUID
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
