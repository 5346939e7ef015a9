package model

import "errors"

var (
	// ErrNotFound is returned by stores when no record matches.
	ErrNotFound = errors.New("record not found")

	// ErrAuthenticationFailed covers both unknown email and wrong
	// password. The two cases must stay indistinguishable to callers.
	ErrAuthenticationFailed = errors.New("authentication failed")

	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")

	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrRefreshTokenInvalid = errors.New("refresh token invalid")

	ErrAuthCodeExpired = errors.New("auth code expired")
	ErrAuthCodeInvalid = errors.New("auth code invalid")
	ErrAuthCodeUsed    = errors.New("auth code already used")

	ErrEmailNotRegistered = errors.New("email not registered")
	ErrRateLimited        = errors.New("too many requests")

	ErrCredentialDecryptionFailed = errors.New("credential decryption failed")

	ErrPasswordPolicyViolation = errors.New("password policy violation")

	ErrUserAlreadyExists = errors.New("user already exists")
)
