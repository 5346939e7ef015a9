package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/llmezi/auth-service/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

type RefreshTokenRepository struct {
	db *Connection
}

func NewRefreshTokenRepository(db *Connection) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token model.RefreshToken) error {
	const query = `
        INSERT INTO refresh_tokens (id, token_fingerprint, user_id, expires_at, created_at, updated_at)
        VALUES ($1,$2,$3,$4,NOW(),NOW())
    `

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx, query, token.ID, token.Fingerprint, token.UserID, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.RefreshToken, error) {
	const query = `
        SELECT id, token_fingerprint, user_id, expires_at, created_at, updated_at
        FROM refresh_tokens WHERE user_id = $1
        ORDER BY expires_at DESC
    `

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list refresh tokens: %w", err)
	}
	defer rows.Close()

	var tokens []model.RefreshToken
	for rows.Next() {
		var rt model.RefreshToken
		if err := rows.Scan(&rt.ID, &rt.Fingerprint, &rt.UserID, &rt.ExpiresAt, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan refresh token: %w", err)
		}
		tokens = append(tokens, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read refresh tokens: %w", err)
	}
	return tokens, nil
}

func (r *RefreshTokenRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *RefreshTokenRepository) DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete refresh tokens by user: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Rotate deletes the rotated-away record and inserts its replacement
// inside one transaction, so a crash mid-rotation never leaves both
// tokens valid or the user with none. When the old record is already
// gone (a concurrent rotation won) it returns model.ErrNotFound and
// the insert never happens.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldID uuid.UUID, next model.RefreshToken) error {
	if next.ID == uuid.Nil {
		next.ID = uuid.New()
	}

	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, oldID)
		if err != nil {
			return fmt.Errorf("failed to delete rotated token: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrNotFound
		}

		const insert = `
            INSERT INTO refresh_tokens (id, token_fingerprint, user_id, expires_at, created_at, updated_at)
            VALUES ($1,$2,$3,$4,NOW(),NOW())
        `
		if _, err := tx.Exec(ctx, insert, next.ID, next.Fingerprint, next.UserID, next.ExpiresAt); err != nil {
			return fmt.Errorf("failed to insert rotated token: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return nil
}
