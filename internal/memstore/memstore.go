// Package memstore keeps identity data in process memory. It backs tests and
// the single-instance "memory" token store.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/repositories"
)

// Store holds every table behind one lock so writes are atomic per key.
type Store struct {
	mu     sync.Mutex
	users  map[string]models.User
	roles  map[string][]string
	claims map[string][]models.Claim
	tokens map[models.TokenKey]models.UserToken
	audit  []models.AuditLog
	known  map[string]string
}

// New returns an empty store that knows the seeded roles.
func New() *Store {
	return &Store{
		users:  make(map[string]models.User),
		roles:  make(map[string][]string),
		claims: make(map[string][]models.Claim),
		tokens: make(map[models.TokenKey]models.UserToken),
		known: map[string]string{
			models.NormalizeKey(models.RoleUser):          models.RoleUser,
			models.NormalizeKey(models.RoleAdministrator): models.RoleAdministrator,
		},
	}
}

// Repositories exposes the identity repositories. Catalog repositories are nil.
func (s *Store) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		Users:     (*userRepo)(s),
		Roles:     (*roleRepo)(s),
		Claims:    (*claimRepo)(s),
		Tokens:    (*tokenStore)(s),
		AuditLogs: (*auditRepo)(s),
	}
}

// Tokens exposes only the token store.
func (s *Store) Tokens() repositories.TokenStore {
	return (*tokenStore)(s)
}

// AuditLogs returns a copy of every audit entry inserted so far.
func (s *Store) AuditLogs() []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditLog(nil), s.audit...)
}

type userRepo Store

func (r *userRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.NormalizedEmail == user.NormalizedEmail || u.NormalizedUserName == user.NormalizedUserName {
			return fmt.Errorf("create user: %w", repositories.ErrDuplicate)
		}
	}
	if _, ok := r.users[user.ID]; ok {
		return fmt.Errorf("create user: %w", repositories.ErrDuplicate)
	}
	r.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("get user by id: %w", repositories.ErrNotFound)
	}
	return &u, nil
}

func (r *userRepo) GetByNormalizedEmail(_ context.Context, normalizedEmail string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.NormalizedEmail == normalizedEmail })
}

func (r *userRepo) GetByNormalizedUserName(_ context.Context, normalizedUserName string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.NormalizedUserName == normalizedUserName })
}

func (r *userRepo) find(match func(models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("find user: %w", repositories.ErrNotFound)
}

func (r *userRepo) UpdateSecurityStamp(_ context.Context, id, stamp string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("update security stamp: %w", repositories.ErrNotFound)
	}
	u.SecurityStamp = stamp
	r.users[id] = u
	return nil
}

func (r *userRepo) WithTx(repositories.Transaction) repositories.UserRepository { return r }

type roleRepo Store

func (r *roleRepo) AddToRole(_ context.Context, userID, roleName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.known[models.NormalizeKey(roleName)]
	if !ok {
		return fmt.Errorf("add user to role %s: %w", roleName, repositories.ErrNotFound)
	}
	for _, existing := range r.roles[userID] {
		if existing == name {
			return fmt.Errorf("add user to role %s: %w", roleName, repositories.ErrDuplicate)
		}
	}
	r.roles[userID] = append(r.roles[userID], name)
	return nil
}

func (r *roleRepo) GetRoles(_ context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.roles[userID]...), nil
}

func (r *roleRepo) WithTx(repositories.Transaction) repositories.RoleRepository { return r }

type claimRepo Store

func (r *claimRepo) AddClaim(_ context.Context, userID string, claim models.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claims[userID] = append(r.claims[userID], claim)
	return nil
}

func (r *claimRepo) GetClaims(_ context.Context, userID string) ([]models.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Claim(nil), r.claims[userID]...), nil
}

func (r *claimRepo) WithTx(repositories.Transaction) repositories.ClaimRepository { return r }

type tokenStore Store

func (s *tokenStore) GetToken(_ context.Context, key models.TokenKey) (*models.UserToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.tokens[key]
	if !ok {
		return nil, fmt.Errorf("get token: %w", repositories.ErrNotFound)
	}
	return &tok, nil
}

func (s *tokenStore) SetToken(_ context.Context, tok *models.UserToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tok.Key()] = *tok
	return nil
}

func (s *tokenStore) RemoveToken(_ context.Context, key models.TokenKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, key)
	return nil
}

func (s *tokenStore) ReplaceToken(_ context.Context, key models.TokenKey, expectedValue, expectedStamp string, next *models.UserToken) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.tokens[key]
	if !ok || cur.Value != expectedValue || cur.SecurityStamp != expectedStamp {
		return false, nil
	}
	s.tokens[key] = *next
	return true, nil
}

type auditRepo Store

func (r *auditRepo) Insert(_ context.Context, log *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.audit = append(r.audit, *log)
	return nil
}

func (r *auditRepo) GetByUserID(_ context.Context, userID string, limit, offset int) ([]*models.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.AuditLog
	for i := range r.audit {
		if r.audit[i].UserID != nil && *r.audit[i].UserID == userID {
			entry := r.audit[i]
			out = append(out, &entry)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })

	if offset >= len(out) {
		return []*models.AuditLog{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *auditRepo) WithTx(repositories.Transaction) repositories.AuditRepository { return r }
