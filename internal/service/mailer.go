package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/llmezi/auth-service/internal/logger"
	"github.com/llmezi/auth-service/internal/model"
)

// Mailer delivers auth codes out of band.
type Mailer interface {
	SendAuthCode(ctx context.Context, toEmail, toName, code string, purpose model.AuthCodePurpose) error
}

// LogMailer writes codes to the log instead of sending mail. It is the
// delivery channel for deployments without an SMTP relay.
type LogMailer struct {
	logger *logger.Logger
}

func NewLogMailer(logger *logger.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendAuthCode(_ context.Context, toEmail, toName, code string, purpose model.AuthCodePurpose) error {
	m.logger.Info("Mailer: auth code issued",
		"to_email", toEmail,
		"to_name", toName,
		"code", code,
		"purpose", string(purpose))
	return nil
}

// ConnectionChecker probes whether the mail relay is reachable.
type ConnectionChecker interface {
	CheckConnection(ctx context.Context) error
}

var errSMTPNotConfigured = errors.New("smtp relay is not configured")

// SMTPChecker dials the relay whose host and port live in the
// credential store. Message delivery is handled elsewhere; this only
// answers "is the relay reachable right now".
type SMTPChecker struct {
	credentials *Credential
	timeout     time.Duration
}

func NewSMTPChecker(credentials *Credential) *SMTPChecker {
	return &SMTPChecker{credentials: credentials, timeout: 10 * time.Second}
}

func (c *SMTPChecker) CheckConnection(ctx context.Context) error {
	host, err := c.credentials.GetValue(ctx, "SMTP_HOST")
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return errSMTPNotConfigured
		}
		return fmt.Errorf("load smtp host: %w", err)
	}
	port, err := c.credentials.GetValue(ctx, "SMTP_PORT")
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return errSMTPNotConfigured
		}
		return fmt.Errorf("load smtp port: %w", err)
	}
	if host == "" || port == "" {
		return errSMTPNotConfigured
	}

	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return fmt.Errorf("dial smtp relay: %w", err)
	}
	return conn.Close()
}

// SMTPStatusCache caches the relay health probe so status endpoints do
// not open an SMTP connection per request.
type SMTPStatusCache struct {
	mu        sync.Mutex
	checker   ConnectionChecker
	ttl       time.Duration
	healthy   bool
	lastCheck time.Time

	now func() time.Time
}

func NewSMTPStatusCache(checker ConnectionChecker, ttl time.Duration) *SMTPStatusCache {
	return &SMTPStatusCache{
		checker: checker,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Healthy returns the cached relay status, refreshing it once the TTL
// has elapsed.
func (c *SMTPStatusCache) Healthy(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastCheck.IsZero() && c.now().Sub(c.lastCheck) < c.ttl {
		return c.healthy
	}

	c.healthy = c.checker.CheckConnection(ctx) == nil
	c.lastCheck = c.now()

	return c.healthy
}

// Invalidate drops the cached status so the next Healthy call probes.
func (c *SMTPStatusCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastCheck = time.Time{}
}
