package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpctx "github.com/llmezi/auth-service/internal/api/http/context"
	"github.com/llmezi/auth-service/internal/audit"
	"github.com/llmezi/auth-service/internal/fingerprint"
	"github.com/llmezi/auth-service/internal/mocks"
	"github.com/llmezi/auth-service/internal/model"
	"github.com/llmezi/auth-service/internal/ratelimit"
	"github.com/llmezi/auth-service/internal/service"
	"github.com/llmezi/auth-service/internal/testutil"
	"github.com/llmezi/auth-service/internal/vault"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	log := testutil.MakeNoopLogger()
	auditLog := audit.New(log)
	hasher := fingerprint.NewHasher("test-secret")
	limiter := ratelimit.New(5, 5*time.Minute)

	users := &mocks.UserStore{}
	refresh := &mocks.RefreshTokenStore{}
	codes := &mocks.AuthCodeStore{}
	credentials := &mocks.CredentialStore{}
	manager := &mocks.TokenManager{}

	// Relay unconfigured: the status endpoint reports not ready.
	credentials.On("GetByKey", mock.Anything, "SMTP_HOST").Return(model.Credential{}, model.ErrNotFound)

	cipher, err := vault.NewCipher(
		[]byte("0123456789abcdef0123456789abcdef"),
		[]byte("fedcba9876543210"),
	)
	require.NoError(t, err)

	tokenService := service.NewTokenService(manager, refresh, hasher, auditLog, log, 30*time.Minute, 672*time.Hour)
	authCodeService := service.NewAuthCodeService(users, codes, hasher, limiter, auditLog, log, 15*time.Minute, 6)
	authService := service.NewAuth(users, tokenService, authCodeService, limiter, service.NewLogMailer(log), auditLog, log)
	userService := service.NewUser(users, tokenService, auditLog, log)
	credentialService := service.NewCredential(cipher, credentials, log)
	smtpStatus := service.NewSMTPStatusCache(service.NewSMTPChecker(credentialService), 5*time.Minute)

	r := New(authService, userService, tokenService, credentialService, smtpStatus, users, httpctx.NewManager(), log)
	return r.Register()
}

func TestRouter_Register(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)
	require.NotNil(t, h)
}

func TestRouter_UnknownRoute(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CredentialsRequireAuthentication(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/credentials", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_SMTPStatus(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/smtp/status", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isSmtpReady":false}`, rec.Body.String())
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/login", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
