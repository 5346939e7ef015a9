package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/llmezi/auth-service/internal/model"
)

var _ model.CredentialStore = (*CredentialRepository)(nil)

type CredentialRepository struct {
	db *Connection
}

func NewCredentialRepository(db *Connection) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) GetByKey(ctx context.Context, key string) (model.Credential, error) {
	const query = `
        SELECT id, key, value, is_value_encrypted, description, created_at, updated_at
        FROM credentials WHERE key = $1
    `

	var c model.Credential
	err := r.db.QueryRow(ctx, query, key).Scan(
		&c.ID, &c.Key, &c.Value, &c.IsValueEncrypted, &c.Description, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Credential{}, model.ErrNotFound
		}
		return model.Credential{}, fmt.Errorf("failed to get credential by key: %w", err)
	}
	return c, nil
}

func (r *CredentialRepository) Upsert(ctx context.Context, credential model.Credential) (model.Credential, error) {
	const query = `
        INSERT INTO credentials (id, key, value, is_value_encrypted, description, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,NOW(),NOW())
        ON CONFLICT (key) DO UPDATE SET
            value = EXCLUDED.value,
            is_value_encrypted = EXCLUDED.is_value_encrypted,
            description = COALESCE(EXCLUDED.description, credentials.description),
            updated_at = NOW()
        RETURNING id, key, value, is_value_encrypted, description, created_at, updated_at
    `

	if credential.ID == uuid.Nil {
		credential.ID = uuid.New()
	}

	var saved model.Credential
	err := r.db.QueryRow(ctx, query,
		credential.ID, credential.Key, credential.Value, credential.IsValueEncrypted, credential.Description,
	).Scan(
		&saved.ID, &saved.Key, &saved.Value, &saved.IsValueEncrypted, &saved.Description, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		return model.Credential{}, fmt.Errorf("failed to upsert credential: %w", err)
	}
	return saved, nil
}

func (r *CredentialRepository) Delete(ctx context.Context, key string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM credentials WHERE key = $1`, key)
	if err != nil {
		return false, fmt.Errorf("failed to delete credential: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *CredentialRepository) List(ctx context.Context) ([]model.Credential, error) {
	const query = `
        SELECT id, key, value, is_value_encrypted, description, created_at, updated_at
        FROM credentials ORDER BY key
    `

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	var credentials []model.Credential
	for rows.Next() {
		var c model.Credential
		if err := rows.Scan(&c.ID, &c.Key, &c.Value, &c.IsValueEncrypted, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		credentials = append(credentials, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	return credentials, nil
}
