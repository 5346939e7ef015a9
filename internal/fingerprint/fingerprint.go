// Package fingerprint computes one-way fingerprints of secret values
// (refresh tokens, one-time codes) so that a read-only compromise of
// the persistence layer yields nothing usable.
package fingerprint

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Hasher produces keyed HMAC-SHA256 fingerprints.
type Hasher struct {
	secret []byte
}

// NewHasher creates a Hasher keyed with the given secret.
func NewHasher(secret string) *Hasher {
	return &Hasher{secret: []byte(secret)}
}

// Fingerprint returns the base64-encoded HMAC-SHA256 of value.
func (h *Hasher) Fingerprint(value string) string {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(value))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify compares value against a stored fingerprint in constant time.
func (h *Hasher) Verify(value, stored string) bool {
	return hmac.Equal([]byte(h.Fingerprint(value)), []byte(stored))
}
