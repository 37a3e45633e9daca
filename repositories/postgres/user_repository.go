package postgres

import (
	"context"

	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/repositories"
	"go.uber.org/zap"
)

const userColumns = `id, email, normalized_email, user_name, normalized_user_name,
		first_name, last_name, password_hash, security_stamp, created_at, updated_at`

// UserRepository implements the repositories.UserRepository interface
type UserRepository struct {
	db     *DB
	tx     *Transaction
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	executor := executorFor(ctx, r.db, r.tx)
	_, err := executor.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.NormalizedEmail,
		user.UserName,
		user.NormalizedUserName,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.SecurityStamp,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return mapError("create user", err)
	}

	r.logger.Debug("user created", zap.String("id", user.ID))
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "get user by id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByNormalizedEmail retrieves a user by upper-cased email
func (r *UserRepository) GetByNormalizedEmail(ctx context.Context, normalizedEmail string) (*models.User, error) {
	return r.getOne(ctx, "get user by email", `SELECT `+userColumns+` FROM users WHERE normalized_email = $1`, normalizedEmail)
}

// GetByNormalizedUserName retrieves a user by upper-cased username
func (r *UserRepository) GetByNormalizedUserName(ctx context.Context, normalizedUserName string) (*models.User, error) {
	return r.getOne(ctx, "get user by username", `SELECT `+userColumns+` FROM users WHERE normalized_user_name = $1`, normalizedUserName)
}

// UpdateSecurityStamp replaces the user's security stamp
func (r *UserRepository) UpdateSecurityStamp(ctx context.Context, id, stamp string) error {
	query := `
		UPDATE users
		SET security_stamp = $2,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	executor := executorFor(ctx, r.db, r.tx)
	result, err := executor.ExecContext(ctx, query, id, stamp)
	if err != nil {
		return mapError("update security stamp", err)
	}
	if err := requireRow("update security stamp", result); err != nil {
		return err
	}

	r.logger.Debug("security stamp updated", zap.String("id", id))
	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *UserRepository) WithTx(tx repositories.Transaction) repositories.UserRepository {
	return &UserRepository{
		db:     r.db,
		tx:     boundTx(tx),
		logger: r.logger,
	}
}

func (r *UserRepository) getOne(ctx context.Context, op, query string, arg interface{}) (*models.User, error) {
	executor := executorFor(ctx, r.db, r.tx)
	user := &models.User{}

	err := executor.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.NormalizedEmail,
		&user.UserName,
		&user.NormalizedUserName,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.SecurityStamp,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(op, err)
	}

	return user, nil
}
