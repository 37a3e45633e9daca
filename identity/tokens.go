package identity

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/repositories"
	"go.uber.org/zap"
)

// tokenBytes is the entropy of a generated authentication token.
const tokenBytes = 32

func tokenKey(user *models.User, provider, name string) models.TokenKey {
	return models.TokenKey{UserID: user.ID, LoginProvider: provider, Name: name}
}

// GetAuthenticationToken returns the stored value, or "" when the slot is empty.
func (m *Manager) GetAuthenticationToken(ctx context.Context, user *models.User, provider, name string) (string, error) {
	tok, err := m.tokens.GetToken(ctx, tokenKey(user, provider, name))
	if errors.Is(err, repositories.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return tok.Value, nil
}

// RemoveAuthenticationToken empties the slot.
func (m *Manager) RemoveAuthenticationToken(ctx context.Context, user *models.User, provider, name string) error {
	return m.tokens.RemoveToken(ctx, tokenKey(user, provider, name))
}

// GenerateAuthenticationToken returns a fresh opaque token. It does not store it.
func (m *Manager) GenerateAuthenticationToken(user *models.User, provider, name string) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate %s token for %s: %w", name, provider, err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// SetAuthenticationToken stores value in the slot, bound to the user's current stamp.
func (m *Manager) SetAuthenticationToken(ctx context.Context, user *models.User, provider, name, value string) error {
	return m.tokens.SetToken(ctx, m.newToken(user, provider, name, value))
}

// VerifyUserToken reports whether value is the live token in the slot and was
// issued under the user's current security stamp.
func (m *Manager) VerifyUserToken(ctx context.Context, user *models.User, provider, name, value string) (bool, error) {
	tok, err := m.tokens.GetToken(ctx, tokenKey(user, provider, name))
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	valueOK := subtle.ConstantTimeCompare([]byte(tok.Value), []byte(value)) == 1
	stampOK := tok.SecurityStamp == user.SecurityStamp
	if valueOK && !stampOK {
		m.logger.Debug("token slot issued under a stale security stamp", zap.String("user_id", user.ID))
	}
	return valueOK && stampOK, nil
}

// ReplaceAuthenticationToken atomically swaps expected for next, provided the
// slot was issued under the user's current stamp.
func (m *Manager) ReplaceAuthenticationToken(ctx context.Context, user *models.User, provider, name, expected, next string) (bool, error) {
	return m.tokens.ReplaceToken(ctx, tokenKey(user, provider, name), expected, user.SecurityStamp,
		m.newToken(user, provider, name, next))
}

func (m *Manager) newToken(user *models.User, provider, name, value string) *models.UserToken {
	return &models.UserToken{
		UserID:        user.ID,
		LoginProvider: provider,
		Name:          name,
		Value:         value,
		SecurityStamp: user.SecurityStamp,
		CreatedAt:     m.now().UTC(),
	}
}
