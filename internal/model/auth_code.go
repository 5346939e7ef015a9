package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuthCodePurpose distinguishes what a one-time code may be used for.
type AuthCodePurpose string

const (
	AuthCodePurposeLogin         AuthCodePurpose = "login"
	AuthCodePurposePasswordReset AuthCodePurpose = "password_reset"
)

// AuthCodeStore defines persistence operations for one-time code
// records. Only fingerprints of generated codes are ever stored.
type AuthCodeStore interface {
	Create(ctx context.Context, code AuthCode) error
	// ListActive returns unused records for the (user, purpose) pair,
	// expired ones included: expiry is decided by the caller so that an
	// expired match can still be consumed.
	ListActive(ctx context.Context, userID uuid.UUID, purpose AuthCodePurpose) ([]AuthCode, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
	// InvalidateActive marks every unused record for the pair as used.
	InvalidateActive(ctx context.Context, userID uuid.UUID, purpose AuthCodePurpose) (int64, error)
	// DeleteOthers removes every record for the pair except keepID.
	DeleteOthers(ctx context.Context, userID uuid.UUID, purpose AuthCodePurpose, keepID uuid.UUID) (int64, error)
}

// AuthCode is the persisted fingerprint of a one-time code.
type AuthCode struct {
	ID          uuid.UUID
	Fingerprint string
	Purpose     AuthCodePurpose
	UserID      uuid.UUID
	ExpiresAt   time.Time
	IsUsed      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
