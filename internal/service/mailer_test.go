package service

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/llmezi/auth-service/internal/mocks"
	"github.com/llmezi/auth-service/internal/model"
	"github.com/llmezi/auth-service/internal/testutil"
)

type fakeChecker struct {
	err   error
	calls int
}

func (f *fakeChecker) CheckConnection(_ context.Context) error {
	f.calls++
	return f.err
}

func TestSMTPStatusCache_CachesWithinTTL(t *testing.T) {
	checker := &fakeChecker{}
	cache := NewSMTPStatusCache(checker, time.Minute)

	now := time.Now()
	cache.now = func() time.Time { return now }

	assert.True(t, cache.Healthy(context.Background()))
	assert.True(t, cache.Healthy(context.Background()))
	assert.Equal(t, 1, checker.calls)

	now = now.Add(2 * time.Minute)
	assert.True(t, cache.Healthy(context.Background()))
	assert.Equal(t, 2, checker.calls)
}

func TestSMTPStatusCache_Invalidate(t *testing.T) {
	checker := &fakeChecker{err: assert.AnError}
	cache := NewSMTPStatusCache(checker, time.Minute)

	assert.False(t, cache.Healthy(context.Background()))

	checker.err = nil
	assert.False(t, cache.Healthy(context.Background()), "stale status served within TTL")

	cache.Invalidate()
	assert.True(t, cache.Healthy(context.Background()))
}

func smtpCredential(key, value string) model.Credential {
	return model.Credential{Key: key, Value: value}
}

func TestSMTPChecker_RelayReachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	store := mocks.NewCredentialStore(t)
	store.On("GetByKey", mock.Anything, "SMTP_HOST").Return(smtpCredential("SMTP_HOST", host), nil).Once()
	store.On("GetByKey", mock.Anything, "SMTP_PORT").Return(smtpCredential("SMTP_PORT", port), nil).Once()

	checker := NewSMTPChecker(NewCredential(newTestCipher(t), store, testutil.MakeNoopLogger()))

	assert.NoError(t, checker.CheckConnection(context.Background()))
}

func TestSMTPChecker_NotConfigured(t *testing.T) {
	store := mocks.NewCredentialStore(t)
	store.On("GetByKey", mock.Anything, "SMTP_HOST").Return(model.Credential{}, model.ErrNotFound).Once()

	checker := NewSMTPChecker(NewCredential(newTestCipher(t), store, testutil.MakeNoopLogger()))

	assert.ErrorIs(t, checker.CheckConnection(context.Background()), errSMTPNotConfigured)
}

func TestSMTPChecker_RelayDown(t *testing.T) {
	// Grab a free port, then close it so nothing is listening there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	store := mocks.NewCredentialStore(t)
	store.On("GetByKey", mock.Anything, "SMTP_HOST").Return(smtpCredential("SMTP_HOST", host), nil).Once()
	store.On("GetByKey", mock.Anything, "SMTP_PORT").Return(smtpCredential("SMTP_PORT", port), nil).Once()

	checker := NewSMTPChecker(NewCredential(newTestCipher(t), store, testutil.MakeNoopLogger()))

	assert.Error(t, checker.CheckConnection(context.Background()))
}

func TestLogMailer_SendAuthCode(t *testing.T) {
	m := NewLogMailer(testutil.MakeNoopLogger())
	err := m.SendAuthCode(context.Background(), "a@b.c", "A", "123456", model.AuthCodePurposeLogin)
	assert.NoError(t, err)
}
