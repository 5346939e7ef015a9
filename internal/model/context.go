package model

import (
	"context"

	"github.com/google/uuid"
)

// ContextManager carries the authenticated user ID between the bearer
// middleware and the handlers that enforce authorization. The second
// return of the getter is false for unauthenticated requests.
type ContextManager interface {
	SetUserIDToContext(ctx context.Context, userID uuid.UUID) context.Context
	GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool)
}
