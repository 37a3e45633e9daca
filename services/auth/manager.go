// Package auth issues access tokens and issues, rotates and verifies refresh tokens.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/hotel-listing/identity"
	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/services"
	"github.com/upb/hotel-listing/services/audit"
	"github.com/upb/hotel-listing/token"
	"go.uber.org/zap"
)

// DefaultRefreshTokenName is the purpose under which refresh tokens are stored.
const DefaultRefreshTokenName = "RefreshToken"

// CredentialStore is the identity capability the manager relies on.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CheckPassword(user *models.User, password string) bool
	Create(ctx context.Context, user *models.User, password string) ([]models.IdentityError, error)
	AddToRole(ctx context.Context, user *models.User, role string) error
	GetRoles(ctx context.Context, user *models.User) ([]string, error)
	GetClaims(ctx context.Context, user *models.User) ([]models.Claim, error)
	RemoveAuthenticationToken(ctx context.Context, user *models.User, provider, name string) error
	GenerateAuthenticationToken(user *models.User, provider, name string) (string, error)
	SetAuthenticationToken(ctx context.Context, user *models.User, provider, name, value string) error
	VerifyUserToken(ctx context.Context, user *models.User, provider, name, value string) (bool, error)
	ReplaceAuthenticationToken(ctx context.Context, user *models.User, provider, name, expected, next string) (bool, error)
	UpdateSecurityStamp(ctx context.Context, user *models.User) error
}

// TokenCodec signs access tokens and reads identity out of them.
type TokenCodec interface {
	Issue(claims []token.Claim) (string, error)
	DecodeUnverified(raw string) (*token.UnverifiedClaims, error)
}

// Config names the refresh token slot and picks the rotation strategy.
type Config struct {
	LoginProvider    string
	RefreshTokenName string

	// AtomicRotation validates and rotates the refresh token with a single
	// compare-and-swap. When false, rotation is remove, generate, then set;
	// two concurrent refreshes can both succeed and the last write wins.
	AtomicRotation bool
}

// Manager is safe for concurrent use. The principal is always passed explicitly.
type Manager struct {
	store    CredentialStore
	codec    TokenCodec
	recorder audit.Recorder
	config   Config
	logger   *zap.Logger
}

// NewManager creates an auth manager. A nil recorder disables auditing.
func NewManager(store CredentialStore, codec TokenCodec, recorder audit.Recorder, config Config, logger *zap.Logger) *Manager {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	if config.RefreshTokenName == "" {
		config.RefreshTokenName = DefaultRefreshTokenName
	}
	return &Manager{
		store:    store,
		codec:    codec,
		recorder: recorder,
		config:   config,
		logger:   logger,
	}
}

// Register creates a principal whose username is its email and gives it the
// User role. Rule violations are returned as identity errors, never as err.
func (m *Manager) Register(ctx context.Context, req models.RegisterRequest) ([]models.IdentityError, error) {
	user := models.NewUser(req.Email, req.FirstName, req.LastName)

	identityErrs, err := m.store.Create(ctx, user, req.Password)
	if err != nil {
		return nil, services.WrapInternal("failed to create user", err)
	}
	if len(identityErrs) > 0 {
		m.logger.Info("registration rejected",
			zap.String("email", req.Email),
			zap.Int("errors", len(identityErrs)))
		return identityErrs, nil
	}

	if err := m.store.AddToRole(ctx, user, models.RoleUser); err != nil {
		return nil, services.WrapInternal("failed to assign default role", err)
	}

	m.recorder.Record(ctx, audit.UserRegistered(user.ID, user.Email))
	m.logger.Info("user registered", zap.String("user_id", user.ID))
	return nil, nil
}

// Login checks the credentials and opens a session. Unknown email and wrong
// password both return services.ErrNotAuthenticated.
func (m *Manager) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := m.store.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, identity.ErrUserNotFound) {
		return nil, services.WrapInternal("failed to look up user", err)
	}

	// CheckPassword runs even for unknown users so both failures cost the same.
	if !m.store.CheckPassword(user, req.Password) || user == nil {
		m.recorder.Record(ctx, audit.LoginFailed(req.Email))
		return nil, services.ErrNotAuthenticated
	}

	resp, err := m.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	m.recorder.Record(ctx, audit.LoginSucceeded(user.ID))
	return resp, nil
}

func (m *Manager) issue(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	accessToken, err := m.GenerateToken(ctx, user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := m.CreateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       user.ID,
	}, nil
}

// CreateRefreshToken replaces whatever refresh token user holds with a new one.
// The remove and set are separate store calls.
func (m *Manager) CreateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	provider, name := m.config.LoginProvider, m.config.RefreshTokenName

	if err := m.store.RemoveAuthenticationToken(ctx, user, provider, name); err != nil {
		return "", services.WrapInternal("failed to remove refresh token", err)
	}

	value, err := m.store.GenerateAuthenticationToken(user, provider, name)
	if err != nil {
		return "", services.WrapInternal("failed to generate refresh token", err)
	}

	if err := m.store.SetAuthenticationToken(ctx, user, provider, name, value); err != nil {
		return "", services.WrapInternal("failed to store refresh token", err)
	}
	return value, nil
}

// VerifyRefreshToken renews the pair in req. The access token is read without
// verification and may be expired; it only names the principal. A refresh
// token that does not match the stored one bumps the security stamp.
func (m *Manager) VerifyRefreshToken(ctx context.Context, req models.AuthResponse) (*models.AuthResponse, error) {
	claims, err := m.codec.DecodeUnverified(req.AccessToken)
	if err != nil {
		return nil, services.WrapInternal("failed to read access token", err)
	}

	user, err := m.store.FindByEmail(ctx, claims.Email())
	if errors.Is(err, identity.ErrUserNotFound) {
		m.recorder.Record(ctx, audit.RefreshRejected(req.UserID, "unknown principal"))
		return nil, services.ErrNotAuthenticated
	}
	if err != nil {
		return nil, services.WrapInternal("failed to look up user", err)
	}
	if user.ID != req.UserID {
		m.recorder.Record(ctx, audit.RefreshRejected(req.UserID, "identity mismatch"))
		return nil, services.ErrNotAuthenticated
	}

	if m.config.AtomicRotation {
		return m.rotateAtomically(ctx, user, req.RefreshToken)
	}

	valid, err := m.store.VerifyUserToken(ctx, user, m.config.LoginProvider, m.config.RefreshTokenName, req.RefreshToken)
	if err != nil {
		return nil, services.WrapInternal("failed to verify refresh token", err)
	}
	if !valid {
		return nil, m.rejectReplay(ctx, user)
	}

	resp, err := m.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	m.recorder.Record(ctx, audit.TokenRefreshed(user.ID))
	return resp, nil
}

func (m *Manager) rotateAtomically(ctx context.Context, user *models.User, presented string) (*models.AuthResponse, error) {
	provider, name := m.config.LoginProvider, m.config.RefreshTokenName

	next, err := m.store.GenerateAuthenticationToken(user, provider, name)
	if err != nil {
		return nil, services.WrapInternal("failed to generate refresh token", err)
	}

	swapped, err := m.store.ReplaceAuthenticationToken(ctx, user, provider, name, presented, next)
	if err != nil {
		return nil, services.WrapInternal("failed to rotate refresh token", err)
	}
	if !swapped {
		return nil, m.rejectReplay(ctx, user)
	}

	accessToken, err := m.GenerateToken(ctx, user)
	if err != nil {
		return nil, err
	}

	m.recorder.Record(ctx, audit.TokenRefreshed(user.ID))
	return &models.AuthResponse{AccessToken: accessToken, RefreshToken: next, UserID: user.ID}, nil
}

func (m *Manager) rejectReplay(ctx context.Context, user *models.User) error {
	m.logger.Warn("refresh token mismatch, invalidating security stamp", zap.String("user_id", user.ID))
	m.recorder.Record(ctx, audit.ReplayDetected(user.ID))

	if err := m.store.UpdateSecurityStamp(ctx, user); err != nil {
		return services.WrapInternal("failed to update security stamp", err)
	}
	return services.ErrNotAuthenticated
}

// GenerateToken signs an access token for user: sub, jti, email and uid, then
// the stored claims, then one role claim per role. Repeated types are kept;
// stored claims named like registered JWT claims are skipped.
func (m *Manager) GenerateToken(ctx context.Context, user *models.User) (string, error) {
	roles, err := m.store.GetRoles(ctx, user)
	if err != nil {
		return "", services.WrapInternal("failed to load roles", err)
	}
	stored, err := m.store.GetClaims(ctx, user)
	if err != nil {
		return "", services.WrapInternal("failed to load claims", err)
	}

	claims := make([]token.Claim, 0, 4+len(stored)+len(roles))
	claims = append(claims,
		token.Claim{Type: token.ClaimSubject, Value: user.Email},
		token.Claim{Type: token.ClaimTokenID, Value: uuid.NewString()},
		token.Claim{Type: token.ClaimEmail, Value: user.Email},
		token.Claim{Type: token.ClaimUserID, Value: user.ID},
	)
	for _, c := range stored {
		if token.IsReserved(c.Type) {
			m.logger.Warn("skipping stored claim with a reserved type",
				zap.String("user_id", user.ID), zap.String("claim_type", c.Type))
			continue
		}
		claims = append(claims, token.Claim{Type: c.Type, Value: c.Value})
	}
	for _, role := range roles {
		claims = append(claims, token.Claim{Type: token.ClaimRole, Value: role})
	}

	signed, err := m.codec.Issue(claims)
	if err != nil {
		return "", services.WrapInternal("failed to sign access token", err)
	}
	return signed, nil
}
