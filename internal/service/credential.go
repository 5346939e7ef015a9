package service

import (
	"context"
	"fmt"

	"github.com/llmezi/auth-service/internal/logger"
	"github.com/llmezi/auth-service/internal/model"
	"github.com/llmezi/auth-service/internal/vault"
)

// Credential manages the key/value store of service credentials.
// Values marked encrypted are ciphertext at rest and in every listing;
// only GetValue decrypts.
type Credential struct {
	cipher *vault.Cipher
	store  model.CredentialStore
	logger *logger.Logger
}

func NewCredential(cipher *vault.Cipher, store model.CredentialStore, logger *logger.Logger) *Credential {
	return &Credential{
		cipher: cipher,
		store:  store,
		logger: logger,
	}
}

// Get returns a credential record as stored. Encrypted values stay
// encrypted.
func (c *Credential) Get(ctx context.Context, key string) (model.Credential, error) {
	return c.store.GetByKey(ctx, key)
}

// GetValue returns the plaintext value of a credential, decrypting it
// when stored encrypted.
func (c *Credential) GetValue(ctx context.Context, key string) (string, error) {
	cred, err := c.store.GetByKey(ctx, key)
	if err != nil {
		return "", err
	}

	if !cred.IsValueEncrypted {
		return cred.Value, nil
	}

	value, err := c.cipher.Decrypt(cred.Value)
	if err != nil {
		c.logger.Error("Credential service: failed to decrypt value", "key", key, "error", err.Error())
		return "", fmt.Errorf("decrypt credential %q: %w", key, err)
	}

	return value, nil
}

// Set stores a credential, encrypting the value first when requested.
// An existing key is overwritten; a nil description keeps the current
// one.
func (c *Credential) Set(ctx context.Context, key, value string, shouldEncrypt bool, description *string) (model.Credential, error) {
	stored := value
	if shouldEncrypt {
		encrypted, err := c.cipher.Encrypt(value)
		if err != nil {
			return model.Credential{}, fmt.Errorf("encrypt credential %q: %w", key, err)
		}
		stored = encrypted
	}

	cred, err := c.store.Upsert(ctx, model.Credential{
		Key:              key,
		Value:            stored,
		IsValueEncrypted: shouldEncrypt,
		Description:      description,
	})
	if err != nil {
		return model.Credential{}, fmt.Errorf("upsert credential: %w", err)
	}

	c.logger.Info("Credential service: credential stored", "key", key, "encrypted", shouldEncrypt)

	return cred, nil
}

// Delete removes a credential by key and reports whether it existed.
func (c *Credential) Delete(ctx context.Context, key string) (bool, error) {
	existed, err := c.store.Delete(ctx, key)
	if err != nil {
		return false, err
	}

	if existed {
		c.logger.Info("Credential service: credential deleted", "key", key)
	}

	return existed, nil
}

// List returns all credentials. With includeValues false every value
// is blanked; with it true encrypted values remain ciphertext.
func (c *Credential) List(ctx context.Context, includeValues bool) ([]model.Credential, error) {
	creds, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}

	if !includeValues {
		for i := range creds {
			creds[i].Value = ""
		}
	}

	return creds, nil
}
