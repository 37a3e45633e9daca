// Package identity is the credential store: principals, password checks,
// roles, claims and the per-principal authentication token slots.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/repositories"
	"github.com/upb/hotel-listing/token"
	"go.uber.org/zap"
)

// ErrUserNotFound is returned by lookups that match no principal.
var ErrUserNotFound = errors.New("user not found")

// Manager implements the credential store on top of the repositories.
type Manager struct {
	users     repositories.UserRepository
	roles     repositories.RoleRepository
	claims    repositories.ClaimRepository
	tokens    repositories.TokenStore
	hasher    PasswordHasher
	policy    PasswordPolicy
	validate  *validator.Validate
	dummyHash string
	now       func() time.Time
	logger    *zap.Logger
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock overrides the time source used to stamp stored tokens.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager wires the credential store. tokens may differ from repos.Tokens
// when slots live outside Postgres.
func NewManager(
	repos *repositories.Repositories,
	tokens repositories.TokenStore,
	hasher PasswordHasher,
	policy PasswordPolicy,
	logger *zap.Logger,
	opts ...Option,
) (*Manager, error) {
	dummy, err := hasher.Hash("dummy-password-for-unknown-users")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	m := &Manager{
		users:     repos.Users,
		roles:     repos.Roles,
		claims:    repos.Claims,
		tokens:    tokens,
		hasher:    hasher,
		policy:    policy,
		validate:  validator.New(),
		dummyHash: dummy,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// FindByEmail looks a principal up by case-insensitive email.
func (m *Manager) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := m.users.GetByNormalizedEmail(ctx, models.NormalizeKey(email))
	return m.found(user, err)
}

// FindByID looks a principal up by id.
func (m *Manager) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, err := m.users.GetByID(ctx, id)
	return m.found(user, err)
}

func (m *Manager) found(user *models.User, err error) (*models.User, error) {
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CheckPassword reports whether password matches user. A nil user, or one
// without a stored hash, is checked against a dummy hash so every outcome costs
// the same, and never matches.
func (m *Manager) CheckPassword(user *models.User, password string) bool {
	encoded := m.dummyHash
	if user != nil && user.PasswordHash != "" {
		encoded = user.PasswordHash
	}

	ok, err := m.hasher.Verify(password, encoded)
	if err != nil {
		m.logger.Warn("password hash could not be verified", zap.Error(err))
		return false
	}
	if user == nil || user.PasswordHash == "" {
		return false
	}
	return ok
}

// Create validates and stores a new principal. Rule violations come back as
// identity errors; err is reserved for infrastructure failures.
func (m *Manager) Create(ctx context.Context, user *models.User, password string) ([]models.IdentityError, error) {
	user.NormalizedEmail = models.NormalizeKey(user.Email)
	user.NormalizedUserName = models.NormalizeKey(user.UserName)
	if user.SecurityStamp == "" {
		user.SecurityStamp = models.NewSecurityStamp()
	}

	var errs []models.IdentityError
	if err := m.validate.Var(user.Email, "required,email"); err != nil {
		errs = append(errs, models.IdentityError{
			Code:        CodeInvalidEmail,
			Description: fmt.Sprintf("Email '%s' is invalid.", user.Email),
		})
	}
	errs = append(errs, m.policy.Validate(password)...)

	dupErrs, err := m.checkUnique(ctx, user)
	if err != nil {
		return nil, err
	}
	errs = append(errs, dupErrs...)
	if len(errs) > 0 {
		return errs, nil
	}

	hash, err := m.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash

	if err := m.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return []models.IdentityError{duplicateEmail(user.Email)}, nil
		}
		return nil, err
	}

	m.logger.Info("user created", zap.String("user_id", user.ID))
	return nil, nil
}

func (m *Manager) checkUnique(ctx context.Context, user *models.User) ([]models.IdentityError, error) {
	var errs []models.IdentityError

	if user.NormalizedUserName != "" {
		_, err := m.users.GetByNormalizedUserName(ctx, user.NormalizedUserName)
		switch {
		case err == nil:
			errs = append(errs, models.IdentityError{
				Code:        CodeDuplicateUserName,
				Description: fmt.Sprintf("Username '%s' is already taken.", user.UserName),
			})
		case !errors.Is(err, repositories.ErrNotFound):
			return nil, err
		}
	}

	if user.NormalizedEmail != "" {
		_, err := m.users.GetByNormalizedEmail(ctx, user.NormalizedEmail)
		switch {
		case err == nil:
			errs = append(errs, duplicateEmail(user.Email))
		case !errors.Is(err, repositories.ErrNotFound):
			return nil, err
		}
	}

	return errs, nil
}

func duplicateEmail(email string) models.IdentityError {
	return models.IdentityError{
		Code:        CodeDuplicateEmail,
		Description: fmt.Sprintf("Email '%s' is already taken.", email),
	}
}

// AddToRole assigns a seeded role to user.
func (m *Manager) AddToRole(ctx context.Context, user *models.User, role string) error {
	return m.roles.AddToRole(ctx, user.ID, role)
}

// GetRoles returns the user's role names.
func (m *Manager) GetRoles(ctx context.Context, user *models.User) ([]string, error) {
	return m.roles.GetRoles(ctx, user.ID)
}

// AddClaim attaches an extra claim to user. Types the token codec owns are
// refused.
func (m *Manager) AddClaim(ctx context.Context, user *models.User, claim models.Claim) error {
	if token.IsReserved(claim.Type) {
		return fmt.Errorf("%w: %s", token.ErrReservedClaim, claim.Type)
	}
	return m.claims.AddClaim(ctx, user.ID, claim)
}

// GetClaims returns the user's extra claims in insertion order.
func (m *Manager) GetClaims(ctx context.Context, user *models.User) ([]models.Claim, error) {
	return m.claims.GetClaims(ctx, user.ID)
}

// UpdateSecurityStamp rotates the user's stamp. Token slots issued under the
// previous stamp stop verifying.
func (m *Manager) UpdateSecurityStamp(ctx context.Context, user *models.User) error {
	stamp := models.NewSecurityStamp()
	if err := m.users.UpdateSecurityStamp(ctx, user.ID, stamp); err != nil {
		return err
	}
	user.SecurityStamp = stamp

	m.logger.Info("security stamp updated", zap.String("user_id", user.ID))
	return nil
}
