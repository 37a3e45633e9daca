package postgres

import (
	"context"
	"fmt"

	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/repositories"
	"go.uber.org/zap"
)

// ClaimRepository implements repositories.ClaimRepository
type ClaimRepository struct {
	db     *DB
	tx     *Transaction
	logger *zap.Logger
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *DB, logger *zap.Logger) repositories.ClaimRepository {
	return &ClaimRepository{db: db, logger: logger}
}

// AddClaim attaches a claim to the user
func (r *ClaimRepository) AddClaim(ctx context.Context, userID string, claim models.Claim) error {
	query := `INSERT INTO user_claims (user_id, claim_type, claim_value) VALUES ($1, $2, $3)`

	executor := executorFor(ctx, r.db, r.tx)
	if _, err := executor.ExecContext(ctx, query, userID, claim.Type, claim.Value); err != nil {
		return mapError("add claim", err)
	}

	r.logger.Debug("claim added", zap.String("user_id", userID), zap.String("type", claim.Type))
	return nil
}

// GetClaims lists the user's claims in insertion order
func (r *ClaimRepository) GetClaims(ctx context.Context, userID string) ([]models.Claim, error) {
	query := `SELECT claim_type, claim_value FROM user_claims WHERE user_id = $1 ORDER BY id`

	executor := executorFor(ctx, r.db, r.tx)
	rows, err := executor.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, mapError("get claims", err)
	}
	defer rows.Close()

	var claims []models.Claim
	for rows.Next() {
		var c models.Claim
		if err := rows.Scan(&c.Type, &c.Value); err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating claim rows: %w", err)
	}

	return claims, nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *ClaimRepository) WithTx(tx repositories.Transaction) repositories.ClaimRepository {
	return &ClaimRepository{db: r.db, tx: boundTx(tx), logger: r.logger}
}
