package audit

import (
	"github.com/llmezi/auth-service/internal/logger"
)

// Log emits structured security events. Every authentication-relevant
// decision produces exactly one event. Emission never fails and never
// blocks the primary operation beyond the underlying slog write, which
// is safe for concurrent use.
type Log struct {
	logger *logger.Logger
}

// New creates a security audit log on top of the application logger.
func New(l *logger.Logger) *Log {
	return &Log{logger: l}
}

// LoginAttempt records a password login attempt.
func (l *Log) LoginAttempt(email string, success bool, args ...any) {
	l.event("LOGIN_ATTEMPT", success, append([]any{"email", email}, args...)...)
}

// TokenCreation records issuance of a signed token.
func (l *Log) TokenCreation(kind string, userID string) {
	l.event("TOKEN_CREATION", true, "token_kind", kind, "user_id", userID)
}

// TokenValidation records the outcome of a token verification attempt.
// userID may be empty when the subject is not recoverable.
func (l *Log) TokenValidation(kind string, success bool, userID string, reason string) {
	args := []any{"token_kind", kind}
	if userID != "" {
		args = append(args, "user_id", userID)
	}
	if reason != "" {
		args = append(args, "reason", reason)
	}
	l.event("TOKEN_VALIDATION", success, args...)
}

// TokenInvalidation records revocation of a token.
func (l *Log) TokenInvalidation(kind string, userID string, reason string) {
	l.event("TOKEN_INVALIDATION", true, "token_kind", kind, "user_id", userID, "reason", reason)
}

// RateLimitHit records a request rejected by the rate limiter.
func (l *Log) RateLimitHit(key string, action string) {
	l.event("RATE_LIMIT_HIT", false, "key", key, "action", action)
}

// Event records a generic security event.
func (l *Log) Event(eventType string, success bool, args ...any) {
	l.event(eventType, success, args...)
}

func (l *Log) event(eventType string, success bool, args ...any) {
	all := append([]any{"event_type", eventType, "success", success}, args...)
	if success {
		l.logger.Info("security event", all...)
		return
	}
	l.logger.Warn("security event", all...)
}
