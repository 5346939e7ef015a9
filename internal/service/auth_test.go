package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/llmezi/auth-service/internal/audit"
	"github.com/llmezi/auth-service/internal/fingerprint"
	"github.com/llmezi/auth-service/internal/mocks"
	"github.com/llmezi/auth-service/internal/model"
	"github.com/llmezi/auth-service/internal/password"
	"github.com/llmezi/auth-service/internal/ratelimit"
	"github.com/llmezi/auth-service/internal/testutil"
)

type authFixture struct {
	users   *mocks.UserStore
	manager *mocks.TokenManager
	refresh *mocks.RefreshTokenStore
	codes   *mocks.AuthCodeStore
	mailer  *mocks.Mailer
	limiter *ratelimit.Limiter
	auth    *Auth
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	log := testutil.MakeNoopLogger()
	auditLog := audit.New(log)
	hasher := fingerprint.NewHasher("test-secret")
	limiter := ratelimit.New(5, 5*time.Minute)

	f := &authFixture{
		users:   &mocks.UserStore{},
		manager: &mocks.TokenManager{},
		refresh: &mocks.RefreshTokenStore{},
		codes:   &mocks.AuthCodeStore{},
		mailer:  &mocks.Mailer{},
		limiter: limiter,
	}

	tokens := NewTokenService(f.manager, f.refresh, hasher, auditLog, log, 30*time.Minute, 672*time.Hour)
	codeSvc := NewAuthCodeService(f.users, f.codes, hasher, limiter, auditLog, log, 15*time.Minute, 6)
	f.auth = NewAuth(f.users, tokens, codeSvc, limiter, f.mailer, auditLog, log)

	return f
}

func (f *authFixture) expectIssue(ctx context.Context, userID uuid.UUID, access, refresh string) {
	f.manager.On("Issue", model.TokenKindAccess, userID, mock.Anything).Return(access, nil).Once()
	f.manager.On("Issue", model.TokenKindRefresh, userID, mock.Anything).Return(refresh, nil).Once()
	f.refresh.On("ListByUser", ctx, userID).Return([]model.RefreshToken{}, nil).Once()
	f.refresh.On("Create", ctx, mock.Anything).Return(nil).Once()
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	hash, err := password.Hash(plain)
	require.NoError(t, err)
	return hash
}

func TestAuth_Authenticate_Success(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	user := model.User{
		ID:           uuid.New(),
		Email:        "a@b.c",
		PasswordHash: mustHash(t, "correct horse!1"),
		IsActive:     true,
	}

	f.users.On("GetByEmail", ctx, "a@b.c").Return(user, nil).Once()
	f.expectIssue(ctx, user.ID, "access", "refresh")

	result, err := f.auth.Authenticate(ctx, "a@b.c", "correct horse!1")
	require.NoError(t, err)
	assert.Equal(t, "access", result.AccessToken)
	assert.Equal(t, "refresh", result.RefreshToken)
	assert.Equal(t, user.ID, result.User.ID)
}

func TestAuth_Authenticate_FailuresAreUniform(t *testing.T) {
	ctx := context.Background()

	hash := mustHash(t, "correct horse!1")

	tests := []struct {
		name  string
		setup func(f *authFixture)
	}{
		{
			name: "unknown email",
			setup: func(f *authFixture) {
				f.users.On("GetByEmail", ctx, "a@b.c").Return(model.User{}, model.ErrNotFound).Once()
			},
		},
		{
			name: "wrong password",
			setup: func(f *authFixture) {
				f.users.On("GetByEmail", ctx, "a@b.c").Return(model.User{
					ID: uuid.New(), Email: "a@b.c", PasswordHash: hash, IsActive: true,
				}, nil).Once()
			},
		},
		{
			name: "inactive account",
			setup: func(f *authFixture) {
				f.users.On("GetByEmail", ctx, "a@b.c").Return(model.User{
					ID: uuid.New(), Email: "a@b.c", PasswordHash: hash, IsActive: false,
				}, nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			tt.setup(f)

			_, err := f.auth.Authenticate(ctx, "a@b.c", "wrong password!2")
			require.ErrorIs(t, err, model.ErrAuthenticationFailed)
			f.manager.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything)

			// The failure burned an attempt.
			_, remaining := f.limiter.IsLimited("a@b.c")
			assert.Equal(t, 4, remaining)
		})
	}
}

func TestAuth_Authenticate_RateLimited(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	for i := 0; i < 5; i++ {
		f.limiter.RecordAttempt("a@b.c")
	}

	_, err := f.auth.Authenticate(ctx, "a@b.c", "whatever pass!3")
	require.ErrorIs(t, err, model.ErrAuthenticationFailed)
	f.users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestAuth_Authenticate_SuccessResetsLimiter(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	user := model.User{
		ID:           uuid.New(),
		Email:        "a@b.c",
		PasswordHash: mustHash(t, "correct horse!1"),
		IsActive:     true,
	}

	f.limiter.RecordAttempt("a@b.c")
	f.limiter.RecordAttempt("a@b.c")

	f.users.On("GetByEmail", ctx, "a@b.c").Return(user, nil).Once()
	f.expectIssue(ctx, user.ID, "access", "refresh")

	_, err := f.auth.Authenticate(ctx, "a@b.c", "correct horse!1")
	require.NoError(t, err)

	_, remaining := f.limiter.IsLimited("a@b.c")
	assert.Equal(t, 5, remaining)
}

func TestAuth_Refresh_Success(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	user := model.User{ID: uuid.New(), Email: "a@b.c", IsActive: true}
	hasher := fingerprint.NewHasher("test-secret")

	record := model.RefreshToken{
		ID:          uuid.New(),
		Fingerprint: hasher.Fingerprint("refresh-old"),
		UserID:      user.ID,
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	f.manager.On("Verify", "refresh-old", model.TokenKindRefresh).
		Return(model.TokenClaims{UserID: user.ID, Kind: model.TokenKindRefresh}, nil).Once()
	f.refresh.On("ListByUser", ctx, user.ID).Return([]model.RefreshToken{record}, nil).Once()
	f.manager.On("Issue", model.TokenKindAccess, user.ID, mock.Anything).Return("access-new", nil).Once()
	f.manager.On("Issue", model.TokenKindRefresh, user.ID, mock.Anything).Return("refresh-new", nil).Once()
	f.refresh.On("Rotate", ctx, record.ID, mock.Anything).Return(nil).Once()
	f.users.On("GetByID", ctx, user.ID).Return(user, nil).Once()

	result, err := f.auth.Refresh(ctx, "refresh-old")
	require.NoError(t, err)
	assert.Equal(t, "access-new", result.AccessToken)
	assert.Equal(t, "refresh-new", result.RefreshToken)
}

func TestAuth_Refresh_InactiveUserBurnsTokens(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	user := model.User{ID: uuid.New(), Email: "a@b.c", IsActive: false}
	hasher := fingerprint.NewHasher("test-secret")

	record := model.RefreshToken{
		ID:          uuid.New(),
		Fingerprint: hasher.Fingerprint("refresh-old"),
		UserID:      user.ID,
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	f.manager.On("Verify", "refresh-old", model.TokenKindRefresh).
		Return(model.TokenClaims{UserID: user.ID, Kind: model.TokenKindRefresh}, nil).Once()
	f.refresh.On("ListByUser", ctx, user.ID).Return([]model.RefreshToken{record}, nil).Once()
	f.manager.On("Issue", model.TokenKindAccess, user.ID, mock.Anything).Return("access-new", nil).Once()
	f.manager.On("Issue", model.TokenKindRefresh, user.ID, mock.Anything).Return("refresh-new", nil).Once()
	f.refresh.On("Rotate", ctx, record.ID, mock.Anything).Return(nil).Once()
	f.users.On("GetByID", ctx, user.ID).Return(user, nil).Once()
	f.refresh.On("DeleteAllByUser", ctx, user.ID).Return(int64(1), nil).Once()

	_, err := f.auth.Refresh(ctx, "refresh-old")
	require.ErrorIs(t, err, model.ErrRefreshTokenInvalid)
	f.refresh.AssertExpectations(t)
}

func TestAuth_RequestAuthCode_DeliversCode(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	user := model.User{ID: uuid.New(), Name: "A", Email: "a@b.c", IsActive: true}

	f.users.On("GetByEmail", ctx, "a@b.c").Return(user, nil).Once()
	f.codes.On("InvalidateActive", ctx, user.ID, model.AuthCodePurposeLogin).Return(int64(0), nil).Once()
	f.codes.On("Create", ctx, mock.Anything).Return(nil).Once()
	f.mailer.On("SendAuthCode", ctx, "a@b.c", "A", mock.Anything, model.AuthCodePurposeLogin).Return(nil).Once()

	err := f.auth.RequestAuthCode(ctx, "a@b.c", model.AuthCodePurposeLogin)
	require.NoError(t, err)
	f.mailer.AssertExpectations(t)
}

func TestAuth_RequestAuthCode_UnknownEmailSucceedsSilently(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	f.users.On("GetByEmail", ctx, "nobody@b.c").Return(model.User{}, model.ErrNotFound).Once()

	err := f.auth.RequestAuthCode(ctx, "nobody@b.c", model.AuthCodePurposeLogin)
	require.NoError(t, err)
	f.mailer.AssertNotCalled(t, "SendAuthCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuth_RequestAuthCode_DeliveryFailureStaysInternal(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	user := model.User{ID: uuid.New(), Name: "A", Email: "a@b.c", IsActive: true}

	f.users.On("GetByEmail", ctx, "a@b.c").Return(user, nil).Once()
	f.codes.On("InvalidateActive", ctx, user.ID, model.AuthCodePurposeLogin).Return(int64(0), nil).Once()
	f.codes.On("Create", ctx, mock.Anything).Return(nil).Once()
	f.mailer.On("SendAuthCode", ctx, "a@b.c", "A", mock.Anything, model.AuthCodePurposeLogin).Return(assert.AnError).Once()

	err := f.auth.RequestAuthCode(ctx, "a@b.c", model.AuthCodePurposeLogin)
	require.NoError(t, err)
}

func TestAuth_LoginWithAuthCode_Success(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	user := model.User{ID: uuid.New(), Email: "a@b.c", IsActive: true}
	hasher := fingerprint.NewHasher("test-secret")

	matched := model.AuthCode{
		ID:          uuid.New(),
		Fingerprint: hasher.Fingerprint("123456"),
		Purpose:     model.AuthCodePurposeLogin,
		UserID:      user.ID,
		ExpiresAt:   time.Now().Add(time.Minute),
	}

	f.users.On("GetByEmail", ctx, "a@b.c").Return(user, nil).Once()
	f.codes.On("ListActive", ctx, user.ID, model.AuthCodePurposeLogin).Return([]model.AuthCode{matched}, nil).Once()
	f.codes.On("MarkUsed", ctx, matched.ID).Return(nil).Once()
	f.codes.On("DeleteOthers", ctx, user.ID, model.AuthCodePurposeLogin, matched.ID).Return(int64(0), nil).Once()
	f.expectIssue(ctx, user.ID, "access", "refresh")

	result, err := f.auth.LoginWithAuthCode(ctx, "a@b.c", "123456")
	require.NoError(t, err)
	assert.Equal(t, "access", result.AccessToken)
}

func TestAuth_LoginWithAuthCode_WrongCodeBurnsAttempt(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	user := model.User{ID: uuid.New(), Email: "a@b.c", IsActive: true}

	f.users.On("GetByEmail", ctx, "a@b.c").Return(user, nil).Once()
	f.codes.On("ListActive", ctx, user.ID, model.AuthCodePurposeLogin).Return([]model.AuthCode{}, nil).Once()

	_, err := f.auth.LoginWithAuthCode(ctx, "a@b.c", "000000")
	require.ErrorIs(t, err, model.ErrAuthCodeInvalid)

	_, remaining := f.limiter.IsLimited("a@b.c")
	assert.Equal(t, 4, remaining)
}

func TestAuth_ResetPassword(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	user := model.User{ID: uuid.New(), Email: "a@b.c", IsActive: true}
	hasher := fingerprint.NewHasher("test-secret")

	matched := model.AuthCode{
		ID:          uuid.New(),
		Fingerprint: hasher.Fingerprint("123456"),
		Purpose:     model.AuthCodePurposePasswordReset,
		UserID:      user.ID,
		ExpiresAt:   time.Now().Add(time.Minute),
	}

	f.users.On("GetByEmail", ctx, "a@b.c").Return(user, nil).Once()
	f.codes.On("ListActive", ctx, user.ID, model.AuthCodePurposePasswordReset).Return([]model.AuthCode{matched}, nil).Once()
	f.codes.On("MarkUsed", ctx, matched.ID).Return(nil).Once()
	f.codes.On("DeleteOthers", ctx, user.ID, model.AuthCodePurposePasswordReset, matched.ID).Return(int64(0), nil).Once()
	f.users.On("UpdatePasswordHash", ctx, user.ID, mock.AnythingOfType("string")).Return(nil).Once()
	f.refresh.On("DeleteAllByUser", ctx, user.ID).Return(int64(2), nil).Once()

	err := f.auth.ResetPassword(ctx, "a@b.c", "123456", "brand new pass!4")
	require.NoError(t, err)
	f.refresh.AssertExpectations(t)
	f.users.AssertExpectations(t)
}

func TestAuth_ResetPassword_WeakPasswordRejectedEarly(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	err := f.auth.ResetPassword(ctx, "a@b.c", "123456", "short")
	require.ErrorIs(t, err, model.ErrPasswordPolicyViolation)
	f.users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestAuth_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	user := model.User{ID: uuid.New(), IsActive: true}
	hasher := fingerprint.NewHasher("test-secret")

	record := model.RefreshToken{
		ID:          uuid.New(),
		Fingerprint: hasher.Fingerprint("refresh"),
		UserID:      user.ID,
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	f.manager.On("Verify", "refresh", model.TokenKindRefresh).
		Return(model.TokenClaims{UserID: user.ID, Kind: model.TokenKindRefresh}, nil).Once()
	f.refresh.On("ListByUser", ctx, user.ID).Return([]model.RefreshToken{record}, nil).Once()
	f.refresh.On("Delete", ctx, record.ID).Return(true, nil).Once()

	deleted, err := f.auth.Logout(ctx, "refresh")
	require.NoError(t, err)
	assert.True(t, deleted)
}
