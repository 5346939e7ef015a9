package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/llmezi/auth-service/internal/audit"
	"github.com/llmezi/auth-service/internal/model"
)

// Claims represents JWT claims with a token kind.
type Claims struct {
	jwt.RegisteredClaims
	Kind string `json:"typ"`
}

// JWT implements TokenManager backed by symmetric HMAC. Access and
// refresh tokens are signed with separate secrets; verification of one
// kind never accepts a token of the other.
type JWT struct {
	accessSecret  []byte
	refreshSecret []byte
	audience      string
	audit         *audit.Log
}

// NewJWT creates a new JWT token manager.
func NewJWT(accessSecret, refreshSecret, audience string, auditLog *audit.Log) model.TokenManager {
	return &JWT{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		audience:      audience,
		audit:         auditLog,
	}
}

// Issue creates a signed token of the given kind for the user.
func (j *JWT) Issue(kind model.TokenKind, userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Audience:  jwt.ClaimStrings{j.audience},
			ID:        uuid.NewString(),
		},
		Kind: string(kind),
	})

	tokenString, err := token.SignedString(j.secretFor(kind))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}

	j.audit.TokenCreation(string(kind), userID.String())

	return tokenString, nil
}

// Verify checks signature, expiry, not-before, audience, and kind.
// Only an expiry failure on an otherwise valid token yields
// model.ErrTokenExpired; everything else is model.ErrTokenInvalid.
// Every attempt emits one audit event.
func (j *JWT) Verify(tokenString string, kind model.TokenKind) (model.TokenClaims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return j.secretFor(kind), nil
	}, jwt.WithAudience(j.audience))

	if err != nil {
		// Expiry is a normal, retry-able condition, but only when the
		// rest of the token checks out.
		if errors.Is(err, jwt.ErrTokenExpired) && claims.Kind == string(kind) && j.hasAudience(claims) {
			j.audit.TokenValidation(string(kind), false, claims.Subject, "expired")
			return model.TokenClaims{}, model.ErrTokenExpired
		}
		j.audit.TokenValidation(string(kind), false, "", "invalid")
		return model.TokenClaims{}, model.ErrTokenInvalid
	}

	if !token.Valid || claims.Kind != string(kind) {
		j.audit.TokenValidation(string(kind), false, "", "kind_mismatch")
		return model.TokenClaims{}, model.ErrTokenInvalid
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		j.audit.TokenValidation(string(kind), false, "", "malformed_subject")
		return model.TokenClaims{}, model.ErrTokenInvalid
	}

	j.audit.TokenValidation(string(kind), true, claims.Subject, "")

	return model.TokenClaims{
		UserID:    userID,
		Kind:      kind,
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (j *JWT) secretFor(kind model.TokenKind) []byte {
	if kind == model.TokenKindRefresh {
		return j.refreshSecret
	}
	return j.accessSecret
}

func (j *JWT) hasAudience(claims *Claims) bool {
	for _, aud := range claims.Audience {
		if aud == j.audience {
			return true
		}
	}
	return false
}
