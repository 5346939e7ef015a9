package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CredentialStore defines persistence operations for configuration
// credentials. Values may be stored encrypted; the IsValueEncrypted
// flag is authoritative, never the shape of the value.
type CredentialStore interface {
	GetByKey(ctx context.Context, key string) (Credential, error)
	// Upsert updates the credential with the same key in place, or
	// inserts it when absent.
	Upsert(ctx context.Context, credential Credential) (Credential, error)
	// Delete removes a credential by key and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context) ([]Credential, error)
}

// Credential is a stored key-value configuration entry.
type Credential struct {
	ID               uuid.UUID
	Key              string
	Value            string
	IsValueEncrypted bool
	Description      *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
