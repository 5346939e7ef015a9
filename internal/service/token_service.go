package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/llmezi/auth-service/internal/audit"
	"github.com/llmezi/auth-service/internal/fingerprint"
	"github.com/llmezi/auth-service/internal/logger"
	"github.com/llmezi/auth-service/internal/model"
)

// TokenService provides high-level operations for issuing, rotating,
// and revoking token pairs. It composes the TokenManager and the
// RefreshTokenStore; only fingerprints of refresh tokens reach the
// store, so rotation matches the presented token against each live
// record instead of looking it up by value.
type TokenService struct {
	manager    model.TokenManager
	store      model.RefreshTokenStore
	hasher     *fingerprint.Hasher
	audit      *audit.Log
	logger     *logger.Logger
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// maxRefreshTokensPerUser bounds the number of live refresh tokens
// (and so the fingerprint scan) per user; issuing beyond it evicts the
// records expiring soonest.
const maxRefreshTokensPerUser = 10

func NewTokenService(
	manager model.TokenManager,
	store model.RefreshTokenStore,
	hasher *fingerprint.Hasher,
	auditLog *audit.Log,
	logger *logger.Logger,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) *TokenService {
	return &TokenService{
		manager:    manager,
		store:      store,
		hasher:     hasher,
		audit:      auditLog,
		logger:     logger,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Issue creates an access/refresh token pair for the user and persists
// the refresh token's fingerprint. The signed refresh token itself is
// returned to the caller and never stored.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID) (accessToken string, refreshToken string, err error) {
	access, err := s.manager.Issue(model.TokenKindAccess, userID, s.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("issue access: %w", err)
	}

	refresh, err := s.manager.Issue(model.TokenKindRefresh, userID, s.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("issue refresh: %w", err)
	}

	if err := s.enforceTokenLimit(ctx, userID); err != nil {
		return "", "", err
	}

	rt := model.RefreshToken{
		ID:          uuid.New(),
		Fingerprint: s.hasher.Fingerprint(refresh),
		UserID:      userID,
		ExpiresAt:   time.Now().Add(s.refreshTTL),
	}

	if err := s.store.Create(ctx, rt); err != nil {
		return "", "", fmt.Errorf("persist refresh: %w", err)
	}

	return access, refresh, nil
}

// Rotate exchanges a valid refresh token for a fresh pair. The matched
// record is deleted and the replacement inserted in one transaction;
// of two concurrent rotations of the same token exactly one wins and
// the other fails with ErrRefreshTokenInvalid. A rotated-away or
// forged token produces the same error as one that never existed.
func (s *TokenService) Rotate(ctx context.Context, presented string) (newAccess string, newRefresh string, userID uuid.UUID, err error) {
	claims, err := s.manager.Verify(presented, model.TokenKindRefresh)
	if err != nil {
		if errors.Is(err, model.ErrTokenExpired) {
			return "", "", uuid.Nil, model.ErrRefreshTokenExpired
		}
		return "", "", uuid.Nil, model.ErrRefreshTokenInvalid
	}

	matched, err := s.findRecord(ctx, claims.UserID, presented)
	if err != nil {
		return "", "", uuid.Nil, err
	}
	if matched == nil {
		s.audit.TokenValidation(string(model.TokenKindRefresh), false, claims.UserID.String(), "fingerprint_not_found")
		return "", "", uuid.Nil, model.ErrRefreshTokenInvalid
	}

	if time.Now().After(matched.ExpiresAt) {
		if _, err := s.store.Delete(ctx, matched.ID); err != nil {
			return "", "", uuid.Nil, fmt.Errorf("delete expired refresh: %w", err)
		}
		s.audit.TokenInvalidation(string(model.TokenKindRefresh), matched.UserID.String(), "db_expiry")
		return "", "", uuid.Nil, model.ErrRefreshTokenExpired
	}

	// Sign the replacement pair before touching the store so a signing
	// failure leaves the presented token untouched.
	access, err := s.manager.Issue(model.TokenKindAccess, matched.UserID, s.accessTTL)
	if err != nil {
		return "", "", uuid.Nil, fmt.Errorf("issue new access: %w", err)
	}
	refresh, err := s.manager.Issue(model.TokenKindRefresh, matched.UserID, s.refreshTTL)
	if err != nil {
		return "", "", uuid.Nil, fmt.Errorf("issue new refresh: %w", err)
	}

	next := model.RefreshToken{
		ID:          uuid.New(),
		Fingerprint: s.hasher.Fingerprint(refresh),
		UserID:      matched.UserID,
		ExpiresAt:   time.Now().Add(s.refreshTTL),
	}

	if err := s.store.Rotate(ctx, matched.ID, next); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// A concurrent rotation consumed the record first.
			s.audit.TokenValidation(string(model.TokenKindRefresh), false, matched.UserID.String(), "lost_rotation_race")
			return "", "", uuid.Nil, model.ErrRefreshTokenInvalid
		}
		return "", "", uuid.Nil, fmt.Errorf("rotate refresh: %w", err)
	}

	s.audit.TokenInvalidation(string(model.TokenKindRefresh), matched.UserID.String(), "rotation")

	return access, refresh, matched.UserID, nil
}

// Invalidate deletes the record matching the presented refresh token
// and reports whether anything was deleted. It never fails on "not
// found" or on an unverifiable token.
func (s *TokenService) Invalidate(ctx context.Context, presented string) (bool, error) {
	claims, err := s.manager.Verify(presented, model.TokenKindRefresh)
	if err != nil {
		return false, nil
	}

	matched, err := s.findRecord(ctx, claims.UserID, presented)
	if err != nil {
		return false, err
	}
	if matched == nil {
		return false, nil
	}

	deleted, err := s.store.Delete(ctx, matched.ID)
	if err != nil {
		return false, fmt.Errorf("delete refresh: %w", err)
	}
	if deleted {
		s.audit.TokenInvalidation(string(model.TokenKindRefresh), matched.UserID.String(), "manual_invalidation")
	}
	return deleted, nil
}

// InvalidateAll deletes every refresh token record for the user. Used
// on password reset and explicit "log out everywhere".
func (s *TokenService) InvalidateAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.store.DeleteAllByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete refresh tokens for user: %w", err)
	}
	if count > 0 {
		s.audit.TokenInvalidation(string(model.TokenKindRefresh), userID.String(), "invalidate_all")
	}
	return count, nil
}

// GetUserID verifies an access token and returns its subject.
func (s *TokenService) GetUserID(ctx context.Context, accessToken string) (uuid.UUID, error) {
	claims, err := s.manager.Verify(accessToken, model.TokenKindAccess)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

// findRecord scans the user's live records for a fingerprint match in
// constant time per record. O(n) with n bounded by the per-user limit.
func (s *TokenService) findRecord(ctx context.Context, userID uuid.UUID, presented string) (*model.RefreshToken, error) {
	records, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list refresh tokens: %w", err)
	}

	for i := range records {
		if s.hasher.Verify(presented, records[i].Fingerprint) {
			return &records[i], nil
		}
	}
	return nil, nil
}

// enforceTokenLimit deletes the records expiring soonest when the user
// is at the cap, making room for one more.
func (s *TokenService) enforceTokenLimit(ctx context.Context, userID uuid.UUID) error {
	records, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list refresh tokens: %w", err)
	}
	if len(records) < maxRefreshTokensPerUser {
		return nil
	}

	// ListByUser orders by expiry descending; the tail expires soonest.
	excess := len(records) - maxRefreshTokensPerUser + 1
	for _, rt := range records[len(records)-excess:] {
		if _, err := s.store.Delete(ctx, rt.ID); err != nil {
			return fmt.Errorf("evict refresh token: %w", err)
		}
		s.audit.TokenInvalidation(string(model.TokenKindRefresh), userID.String(), "max_tokens_limit_enforced")
	}
	return nil
}
