package postgres

import (
	"context"

	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/repositories"
	"go.uber.org/zap"
)

// TokenRepository stores token slots in the user_tokens table.
type TokenRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewTokenRepository creates a Postgres-backed token store
func NewTokenRepository(db *DB, logger *zap.Logger) repositories.TokenStore {
	return &TokenRepository{db: db, logger: logger}
}

// GetToken returns the slot contents or ErrNotFound
func (r *TokenRepository) GetToken(ctx context.Context, key models.TokenKey) (*models.UserToken, error) {
	query := `
		SELECT user_id, login_provider, name, value, security_stamp, created_at
		FROM user_tokens
		WHERE user_id = $1 AND login_provider = $2 AND name = $3
	`

	tok := &models.UserToken{}
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, key.UserID, key.LoginProvider, key.Name).Scan(
		&tok.UserID,
		&tok.LoginProvider,
		&tok.Name,
		&tok.Value,
		&tok.SecurityStamp,
		&tok.CreatedAt,
	)
	if err != nil {
		return nil, mapError("get token", err)
	}
	return tok, nil
}

// SetToken upserts the slot
func (r *TokenRepository) SetToken(ctx context.Context, tok *models.UserToken) error {
	query := `
		INSERT INTO user_tokens (user_id, login_provider, name, value, security_stamp, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, login_provider, name)
		DO UPDATE SET value = EXCLUDED.value,
		              security_stamp = EXCLUDED.security_stamp,
		              created_at = EXCLUDED.created_at
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		tok.UserID,
		tok.LoginProvider,
		tok.Name,
		tok.Value,
		tok.SecurityStamp,
		tok.CreatedAt,
	)
	if err != nil {
		return mapError("set token", err)
	}

	r.logger.Debug("token stored",
		zap.String("user_id", tok.UserID),
		zap.String("provider", tok.LoginProvider),
		zap.String("name", tok.Name))
	return nil
}

// RemoveToken deletes the slot if present
func (r *TokenRepository) RemoveToken(ctx context.Context, key models.TokenKey) error {
	query := `DELETE FROM user_tokens WHERE user_id = $1 AND login_provider = $2 AND name = $3`

	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, key.UserID, key.LoginProvider, key.Name); err != nil {
		return mapError("remove token", err)
	}
	return nil
}

// ReplaceToken swaps the slot value only when it still holds expectedValue
// under expectedStamp
func (r *TokenRepository) ReplaceToken(ctx context.Context, key models.TokenKey, expectedValue, expectedStamp string, next *models.UserToken) (bool, error) {
	query := `
		UPDATE user_tokens
		SET value = $4,
		    security_stamp = $5,
		    created_at = $6
		WHERE user_id = $1 AND login_provider = $2 AND name = $3
		  AND value = $7 AND security_stamp = $8
	`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		key.UserID,
		key.LoginProvider,
		key.Name,
		next.Value,
		next.SecurityStamp,
		next.CreatedAt,
		expectedValue,
		expectedStamp,
	)
	if err != nil {
		return false, mapError("replace token", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, mapError("replace token", err)
	}
	return rowsAffected == 1, nil
}
