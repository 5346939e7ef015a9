package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/llmezi/auth-service/internal/audit"
	"github.com/llmezi/auth-service/internal/fingerprint"
	"github.com/llmezi/auth-service/internal/logger"
	"github.com/llmezi/auth-service/internal/model"
	"github.com/llmezi/auth-service/internal/ratelimit"

	"github.com/google/uuid"
)

// AuthCodeService manages one-time passcodes: short numeric codes
// delivered out-of-band, stored only as fingerprints, single-use, with
// at most one active code per (user, purpose).
type AuthCodeService struct {
	users   model.UserStore
	store   model.AuthCodeStore
	hasher  *fingerprint.Hasher
	limiter *ratelimit.Limiter
	audit   *audit.Log
	logger  *logger.Logger
	ttl     time.Duration
	length  int
}

func NewAuthCodeService(
	users model.UserStore,
	store model.AuthCodeStore,
	hasher *fingerprint.Hasher,
	limiter *ratelimit.Limiter,
	auditLog *audit.Log,
	logger *logger.Logger,
	ttl time.Duration,
	length int,
) *AuthCodeService {
	return &AuthCodeService{
		users:   users,
		store:   store,
		hasher:  hasher,
		limiter: limiter,
		audit:   auditLog,
		logger:  logger,
		ttl:     ttl,
		length:  length,
	}
}

// rateLimitKey isolates code-generation attempts from password login
// attempts for the same email.
func rateLimitKey(email string) string {
	return "auth_code:" + email
}

// Generate creates a fresh code for the user, invalidating any prior
// unused codes of the same purpose. The plaintext code is returned for
// out-of-band delivery and never persisted. Failures here
// (ErrEmailNotRegistered, ErrRateLimited) must not leak past the
// facade boundary.
func (s *AuthCodeService) Generate(ctx context.Context, email string, purpose model.AuthCodePurpose) (string, model.User, error) {
	key := rateLimitKey(email)

	if limited, _ := s.limiter.IsLimited(key); limited {
		s.audit.RateLimitHit(key, "AUTH_CODE_GENERATION")
		return "", model.User{}, model.ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// Burn an attempt for the unknown address too, so probing
			// costs the same either way.
			s.limiter.RecordAttempt(key)
			s.audit.Event("AUTH_CODE_GENERATION", false, "reason", "email_not_found")
			return "", model.User{}, model.ErrEmailNotRegistered
		}
		return "", model.User{}, fmt.Errorf("get user by email: %w", err)
	}

	if _, err := s.store.InvalidateActive(ctx, user.ID, purpose); err != nil {
		return "", model.User{}, fmt.Errorf("invalidate prior codes: %w", err)
	}

	code, err := randomDigits(s.length)
	if err != nil {
		return "", model.User{}, fmt.Errorf("generate code: %w", err)
	}

	record := model.AuthCode{
		ID:          uuid.New(),
		Fingerprint: s.hasher.Fingerprint(code),
		Purpose:     purpose,
		UserID:      user.ID,
		ExpiresAt:   time.Now().Add(s.ttl),
	}
	if err := s.store.Create(ctx, record); err != nil {
		return "", model.User{}, fmt.Errorf("persist code: %w", err)
	}

	s.limiter.RecordAttempt(key)
	s.audit.Event("AUTH_CODE_GENERATION", true, "user_id", user.ID.String(), "purpose", string(purpose))

	return code, user, nil
}

// Verify resolves the user and tests the presented code against each
// unused record's fingerprint in constant time. A matching record is
// consumed (marked used) on success and on expiry, but never when
// nothing matched. Successful verification also deletes the user's
// remaining codes of that purpose.
func (s *AuthCodeService) Verify(ctx context.Context, email, code string, purpose model.AuthCodePurpose) (model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.audit.Event("AUTH_CODE_VERIFICATION", false, "reason", "user_not_found")
			return model.User{}, model.ErrAuthCodeInvalid
		}
		return model.User{}, fmt.Errorf("get user by email: %w", err)
	}

	records, err := s.store.ListActive(ctx, user.ID, purpose)
	if err != nil {
		return model.User{}, fmt.Errorf("list codes: %w", err)
	}

	var matched *model.AuthCode
	for i := range records {
		if s.hasher.Verify(code, records[i].Fingerprint) {
			matched = &records[i]
			break
		}
	}

	if matched == nil {
		s.audit.Event("AUTH_CODE_VERIFICATION", false, "reason", "code_not_found", "user_id", user.ID.String())
		return model.User{}, model.ErrAuthCodeInvalid
	}

	if time.Now().After(matched.ExpiresAt) {
		// Consume the expired code so it cannot be probed again.
		if err := s.store.MarkUsed(ctx, matched.ID); err != nil {
			return model.User{}, fmt.Errorf("consume expired code: %w", err)
		}
		s.audit.Event("AUTH_CODE_VERIFICATION", false, "reason", "code_expired", "user_id", user.ID.String())
		return model.User{}, model.ErrAuthCodeExpired
	}

	if err := s.store.MarkUsed(ctx, matched.ID); err != nil {
		return model.User{}, fmt.Errorf("consume code: %w", err)
	}

	deleted, err := s.store.DeleteOthers(ctx, user.ID, purpose, matched.ID)
	if err != nil {
		return model.User{}, fmt.Errorf("clean up codes: %w", err)
	}
	if deleted > 0 {
		s.audit.Event("AUTH_CODE_CLEANUP", true, "user_id", user.ID.String(), "deleted_codes", deleted)
	}

	s.audit.Event("AUTH_CODE_VERIFICATION", true, "user_id", user.ID.String(), "purpose", string(purpose))

	return user, nil
}

// randomDigits returns n digits from a cryptographically secure
// source.
func randomDigits(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits), nil
}
