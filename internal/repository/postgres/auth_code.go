package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/llmezi/auth-service/internal/model"
)

var _ model.AuthCodeStore = (*AuthCodeRepository)(nil)

type AuthCodeRepository struct {
	db *Connection
}

func NewAuthCodeRepository(db *Connection) *AuthCodeRepository {
	return &AuthCodeRepository{db: db}
}

func (r *AuthCodeRepository) Create(ctx context.Context, code model.AuthCode) error {
	const query = `
        INSERT INTO auth_codes (id, code_fingerprint, purpose, user_id, expires_at, is_used, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
    `

	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx, query, code.ID, code.Fingerprint, code.Purpose, code.UserID, code.ExpiresAt, code.IsUsed)
	if err != nil {
		return fmt.Errorf("failed to create auth code: %w", err)
	}
	return nil
}

func (r *AuthCodeRepository) ListActive(ctx context.Context, userID uuid.UUID, purpose model.AuthCodePurpose) ([]model.AuthCode, error) {
	const query = `
        SELECT id, code_fingerprint, purpose, user_id, expires_at, is_used, created_at, updated_at
        FROM auth_codes WHERE user_id = $1 AND purpose = $2 AND is_used = FALSE
    `

	rows, err := r.db.Query(ctx, query, userID, purpose)
	if err != nil {
		return nil, fmt.Errorf("failed to list auth codes: %w", err)
	}
	defer rows.Close()

	var codes []model.AuthCode
	for rows.Next() {
		var c model.AuthCode
		if err := rows.Scan(&c.ID, &c.Fingerprint, &c.Purpose, &c.UserID, &c.ExpiresAt, &c.IsUsed, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan auth code: %w", err)
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read auth codes: %w", err)
	}
	return codes, nil
}

func (r *AuthCodeRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE auth_codes SET is_used = TRUE, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark auth code used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *AuthCodeRepository) InvalidateActive(ctx context.Context, userID uuid.UUID, purpose model.AuthCodePurpose) (int64, error) {
	const query = `
        UPDATE auth_codes SET is_used = TRUE, updated_at = NOW()
        WHERE user_id = $1 AND purpose = $2 AND is_used = FALSE
    `

	tag, err := r.db.Exec(ctx, query, userID, purpose)
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate auth codes: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *AuthCodeRepository) DeleteOthers(ctx context.Context, userID uuid.UUID, purpose model.AuthCodePurpose, keepID uuid.UUID) (int64, error) {
	const query = `DELETE FROM auth_codes WHERE user_id = $1 AND purpose = $2 AND id <> $3`

	tag, err := r.db.Exec(ctx, query, userID, purpose, keepID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete auth codes: %w", err)
	}
	return tag.RowsAffected(), nil
}
