package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/llmezi/auth-service/internal/audit"
	"github.com/llmezi/auth-service/internal/logger"
	"github.com/llmezi/auth-service/internal/model"
	"github.com/llmezi/auth-service/internal/password"
	"github.com/llmezi/auth-service/internal/ratelimit"
)

// Auth orchestrates the authentication flows. It is the only caller of
// the lower components; the transport layer talks to it exclusively.
type Auth struct {
	users   model.UserStore
	tokens  *TokenService
	codes   *AuthCodeService
	limiter *ratelimit.Limiter
	mailer  Mailer
	audit   *audit.Log
	logger  *logger.Logger
}

func NewAuth(
	users model.UserStore,
	tokens *TokenService,
	codes *AuthCodeService,
	limiter *ratelimit.Limiter,
	mailer Mailer,
	auditLog *audit.Log,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		users:   users,
		tokens:  tokens,
		codes:   codes,
		limiter: limiter,
		mailer:  mailer,
		audit:   auditLog,
		logger:  logger,
	}
}

// Authenticate verifies an email/password pair and issues a token
// pair. Unknown email, wrong password, inactive account, and a
// rate-limited caller all fail with the same ErrAuthenticationFailed
// so account existence is never revealed.
func (a *Auth) Authenticate(ctx context.Context, email, plainPassword string) (model.AuthResult, error) {
	a.logger.Debug("Auth service: authenticating user", "email", email)

	if limited, _ := a.limiter.IsLimited(email); limited {
		a.audit.RateLimitHit(email, "AUTH_ATTEMPT")
		return model.AuthResult{}, model.ErrAuthenticationFailed
	}

	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			a.limiter.RecordAttempt(email)
			a.audit.LoginAttempt(email, false, "reason", "user_not_found")
			return model.AuthResult{}, model.ErrAuthenticationFailed
		}
		return model.AuthResult{}, fmt.Errorf("get user by email: %w", err)
	}

	if !user.IsActive {
		a.limiter.RecordAttempt(email)
		a.audit.LoginAttempt(email, false, "reason", "user_inactive", "user_id", user.ID.String())
		return model.AuthResult{}, model.ErrAuthenticationFailed
	}

	if !password.Verify(plainPassword, user.PasswordHash) {
		a.limiter.RecordAttempt(email)
		a.audit.LoginAttempt(email, false, "reason", "invalid_password", "user_id", user.ID.String())
		return model.AuthResult{}, model.ErrAuthenticationFailed
	}

	a.limiter.Reset(email)
	a.audit.LoginAttempt(email, true, "user_id", user.ID.String())

	access, refresh, err := a.tokens.Issue(ctx, user.ID)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("issue tokens: %w", err)
	}

	a.logger.Info("Auth service: user authenticated", "user_id", user.ID.String())

	return model.AuthResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// Refresh rotates a refresh token into a fresh pair. Clients receive
// distinct ErrRefreshTokenExpired / ErrRefreshTokenInvalid so they can
// tell "log in again" from "retry silently".
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (model.AuthResult, error) {
	access, refresh, userID, err := a.tokens.Rotate(ctx, refreshToken)
	if err != nil {
		return model.AuthResult{}, err
	}

	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.AuthResult{}, model.ErrRefreshTokenInvalid
		}
		return model.AuthResult{}, fmt.Errorf("get user by id: %w", err)
	}
	if !user.IsActive {
		// Burn the freshly rotated pair for a deactivated account.
		if _, err := a.tokens.InvalidateAll(ctx, user.ID); err != nil {
			return model.AuthResult{}, fmt.Errorf("invalidate tokens for inactive user: %w", err)
		}
		return model.AuthResult{}, model.ErrRefreshTokenInvalid
	}

	return model.AuthResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// Logout invalidates the presented refresh token and reports whether
// anything was invalidated. It never fails on an unknown token.
func (a *Auth) Logout(ctx context.Context, refreshToken string) (bool, error) {
	return a.tokens.Invalidate(ctx, refreshToken)
}

// RequestAuthCode generates a code and hands it to the mailer for
// out-of-band delivery. Unknown addresses and rate-limited callers
// observe the same uniform success as everyone else: requesting a code
// must not reveal whether an account exists.
func (a *Auth) RequestAuthCode(ctx context.Context, email string, purpose model.AuthCodePurpose) error {
	code, user, err := a.codes.Generate(ctx, email, purpose)
	if err != nil {
		if errors.Is(err, model.ErrEmailNotRegistered) || errors.Is(err, model.ErrRateLimited) {
			a.audit.Event("AUTH_CODE_REQUEST", false, "reason", err.Error())
			return nil
		}
		return fmt.Errorf("generate auth code: %w", err)
	}

	if err := a.mailer.SendAuthCode(ctx, user.Email, user.Name, code, purpose); err != nil {
		// Delivery failure stays internal; surfacing it would leak that
		// the address is registered.
		a.logger.Error("Auth service: failed to deliver auth code",
			"user_id", user.ID.String(),
			"error", err.Error())
		a.audit.Event("AUTH_CODE_EMAIL_SENT", false, "user_id", user.ID.String(), "reason", "delivery_failed")
		return nil
	}

	a.audit.Event("AUTH_CODE_EMAIL_SENT", true, "user_id", user.ID.String(), "purpose", string(purpose))
	return nil
}

// LoginWithAuthCode verifies a login code and issues a token pair.
func (a *Auth) LoginWithAuthCode(ctx context.Context, email, code string) (model.AuthResult, error) {
	if limited, _ := a.limiter.IsLimited(email); limited {
		a.audit.RateLimitHit(email, "AUTH_CODE_LOGIN")
		return model.AuthResult{}, model.ErrAuthCodeInvalid
	}

	user, err := a.codes.Verify(ctx, email, code, model.AuthCodePurposeLogin)
	if err != nil {
		if errors.Is(err, model.ErrAuthCodeInvalid) || errors.Is(err, model.ErrAuthCodeExpired) {
			a.limiter.RecordAttempt(email)
		}
		return model.AuthResult{}, err
	}

	if !user.IsActive {
		a.limiter.RecordAttempt(email)
		a.audit.Event("AUTH_CODE_LOGIN", false, "reason", "user_inactive", "user_id", user.ID.String())
		return model.AuthResult{}, model.ErrAuthCodeInvalid
	}

	a.limiter.Reset(email)

	access, refresh, err := a.tokens.Issue(ctx, user.ID)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("issue tokens: %w", err)
	}

	a.audit.Event("AUTH_CODE_LOGIN", true, "user_id", user.ID.String())

	return model.AuthResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// ResetPassword verifies a password-reset code, stores the new
// password hash, and invalidates every refresh token the user holds.
func (a *Auth) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if err := password.Validate(newPassword); err != nil {
		return err
	}

	if limited, _ := a.limiter.IsLimited(email); limited {
		a.audit.RateLimitHit(email, "PASSWORD_RESET")
		return model.ErrAuthCodeInvalid
	}

	user, err := a.codes.Verify(ctx, email, code, model.AuthCodePurposePasswordReset)
	if err != nil {
		if errors.Is(err, model.ErrAuthCodeInvalid) || errors.Is(err, model.ErrAuthCodeExpired) {
			a.limiter.RecordAttempt(email)
		}
		return err
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	if err := a.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}

	if _, err := a.tokens.InvalidateAll(ctx, user.ID); err != nil {
		return fmt.Errorf("invalidate refresh tokens: %w", err)
	}

	a.limiter.Reset(email)
	a.audit.Event("PASSWORD_RESET", true, "user_id", user.ID.String())

	a.logger.Info("Auth service: password reset completed", "user_id", user.ID.String())

	return nil
}
