package repositories

import (
	"context"
	"errors"

	"github.com/upb/hotel-listing/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique constraint rejects a write
	ErrDuplicate = errors.New("duplicate record")

	// ErrInvalidReference is returned when a write points at a missing parent row
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// UserRepository handles principal records
type UserRepository interface {
	// Create inserts a user. Returns ErrDuplicate when the email or username is taken.
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByNormalizedEmail retrieves a user by upper-cased email
	GetByNormalizedEmail(ctx context.Context, normalizedEmail string) (*models.User, error)

	// GetByNormalizedUserName retrieves a user by upper-cased username
	GetByNormalizedUserName(ctx context.Context, normalizedUserName string) (*models.User, error)

	// UpdateSecurityStamp replaces the user's security stamp
	UpdateSecurityStamp(ctx context.Context, id, stamp string) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) UserRepository
}

// RoleRepository handles role membership
type RoleRepository interface {
	// AddToRole adds the user to a named role. Returns ErrNotFound for unknown roles.
	AddToRole(ctx context.Context, userID, roleName string) error

	// GetRoles lists the user's role names in assignment order
	GetRoles(ctx context.Context, userID string) ([]string, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) RoleRepository
}

// ClaimRepository handles per-user extra claims
type ClaimRepository interface {
	// AddClaim attaches a claim. Repeated types are allowed.
	AddClaim(ctx context.Context, userID string, claim models.Claim) error

	// GetClaims lists the user's claims in insertion order
	GetClaims(ctx context.Context, userID string) ([]models.Claim, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) ClaimRepository
}

// TokenStore holds one named token per (user, provider, name) slot.
// Writes to a slot must be atomic per key.
type TokenStore interface {
	// GetToken returns the slot contents or ErrNotFound
	GetToken(ctx context.Context, key models.TokenKey) (*models.UserToken, error)

	// SetToken overwrites the slot
	SetToken(ctx context.Context, token *models.UserToken) error

	// RemoveToken empties the slot. Removing an empty slot is not an error.
	RemoveToken(ctx context.Context, key models.TokenKey) error

	// ReplaceToken overwrites the slot with next only if it currently holds
	// expectedValue issued under expectedStamp. It reports whether the swap happened.
	ReplaceToken(ctx context.Context, key models.TokenKey, expectedValue, expectedStamp string, next *models.UserToken) (bool, error)
}

// AuditRepository handles audit log data operations
type AuditRepository interface {
	// Insert inserts a new audit log entry
	Insert(ctx context.Context, log *models.AuditLog) error

	// GetByUserID retrieves audit logs for a user, newest first
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.AuditLog, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) AuditRepository
}

// CountryRepository handles catalog countries
type CountryRepository interface {
	List(ctx context.Context) ([]*models.Country, error)
	ListPaged(ctx context.Context, params models.QueryParameters) ([]*models.Country, int, error)
	GetByID(ctx context.Context, id int) (*models.Country, error)

	// GetDetails loads the country together with its hotels
	GetDetails(ctx context.Context, id int) (*models.Country, error)

	Create(ctx context.Context, country *models.Country) error
	Update(ctx context.Context, country *models.Country) error
	Delete(ctx context.Context, id int) error
	Exists(ctx context.Context, id int) (bool, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) CountryRepository
}

// HotelRepository handles catalog hotels
type HotelRepository interface {
	List(ctx context.Context) ([]*models.Hotel, error)
	ListPaged(ctx context.Context, params models.QueryParameters) ([]*models.Hotel, int, error)
	GetByID(ctx context.Context, id int) (*models.Hotel, error)
	Create(ctx context.Context, hotel *models.Hotel) error
	Update(ctx context.Context, hotel *models.Hotel) error
	Delete(ctx context.Context, id int) error
	Exists(ctx context.Context, id int) (bool, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) HotelRepository
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users     UserRepository
	Roles     RoleRepository
	Claims    ClaimRepository
	Tokens    TokenStore
	AuditLogs AuditRepository
	Countries CountryRepository
	Hotels    HotelRepository
}
