package postgres

import (
	"context"
	"fmt"

	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/repositories"
	"go.uber.org/zap"
)

// RoleRepository implements repositories.RoleRepository
type RoleRepository struct {
	db     *DB
	tx     *Transaction
	logger *zap.Logger
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *DB, logger *zap.Logger) repositories.RoleRepository {
	return &RoleRepository{db: db, logger: logger}
}

// AddToRole adds the user to a named role
func (r *RoleRepository) AddToRole(ctx context.Context, userID, roleName string) error {
	query := `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE normalized_name = $2
	`

	executor := executorFor(ctx, r.db, r.tx)
	result, err := executor.ExecContext(ctx, query, userID, models.NormalizeKey(roleName))
	if err != nil {
		return mapError("add user to role", err)
	}
	if err := requireRow("add user to role "+roleName, result); err != nil {
		return err
	}

	r.logger.Debug("user added to role", zap.String("user_id", userID), zap.String("role", roleName))
	return nil
}

// GetRoles lists the user's role names in assignment order
func (r *RoleRepository) GetRoles(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY ur.assigned_at, r.id
	`

	executor := executorFor(ctx, r.db, r.tx)
	rows, err := executor.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, mapError("get roles", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating role rows: %w", err)
	}

	return roles, nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *RoleRepository) WithTx(tx repositories.Transaction) repositories.RoleRepository {
	return &RoleRepository{db: r.db, tx: boundTx(tx), logger: r.logger}
}
