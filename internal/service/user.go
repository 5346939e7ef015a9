package service

import (
	"context"
	"fmt"

	"github.com/llmezi/auth-service/internal/audit"
	"github.com/llmezi/auth-service/internal/logger"
	"github.com/llmezi/auth-service/internal/model"
	"github.com/llmezi/auth-service/internal/password"
)

// User covers account provisioning. The instance is single-tenant: the
// first registered account is the administrator, and registration
// closes once it exists.
type User struct {
	users  model.UserStore
	tokens *TokenService
	audit  *audit.Log
	logger *logger.Logger
}

func NewUser(users model.UserStore, tokens *TokenService, auditLog *audit.Log, logger *logger.Logger) *User {
	return &User{
		users:  users,
		tokens: tokens,
		audit:  auditLog,
		logger: logger,
	}
}

// IsFirstAdminCreated reports whether setup has already happened.
func (u *User) IsFirstAdminCreated(ctx context.Context) (bool, error) {
	count, err := u.users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count > 0, nil
}

// CreateFirstAdmin provisions the administrator account and logs it in.
// It fails with ErrUserAlreadyExists once any account exists.
func (u *User) CreateFirstAdmin(ctx context.Context, name, email, plainPassword string) (model.AuthResult, error) {
	created, err := u.IsFirstAdminCreated(ctx)
	if err != nil {
		return model.AuthResult{}, err
	}
	if created {
		return model.AuthResult{}, model.ErrUserAlreadyExists
	}

	if err := password.Validate(plainPassword); err != nil {
		return model.AuthResult{}, err
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		IsAdmin:      true,
	})
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	u.audit.Event("ADMIN_SETUP", true, "user_id", user.ID.String())
	u.logger.Info("User service: first admin created", "user_id", user.ID.String())

	access, refresh, err := u.tokens.Issue(ctx, user.ID)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("issue tokens: %w", err)
	}

	return model.AuthResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}
