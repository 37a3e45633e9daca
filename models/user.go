package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role names seeded by the initial migration.
const (
	RoleUser          = "User"
	RoleAdministrator = "Administrator"
)

// User is the principal record owned by the credential store.
type User struct {
	ID                 string    `json:"id" db:"id"`
	Email              string    `json:"email" db:"email"`
	NormalizedEmail    string    `json:"-" db:"normalized_email"`
	UserName           string    `json:"userName" db:"user_name"`
	NormalizedUserName string    `json:"-" db:"normalized_user_name"`
	FirstName          string    `json:"firstName" db:"first_name"`
	LastName           string    `json:"lastName" db:"last_name"`
	PasswordHash       string    `json:"-" db:"password_hash"`
	SecurityStamp      string    `json:"-" db:"security_stamp"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a user whose username is its email address.
func NewUser(email, firstName, lastName string) *User {
	now := time.Now().UTC()
	email = strings.TrimSpace(email)
	return &User{
		ID:                 uuid.NewString(),
		Email:              email,
		NormalizedEmail:    NormalizeKey(email),
		UserName:           email,
		NormalizedUserName: NormalizeKey(email),
		FirstName:          firstName,
		LastName:           lastName,
		SecurityStamp:      NewSecurityStamp(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// NormalizeKey returns the lookup form of an email or username.
func NormalizeKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NewSecurityStamp returns a fresh invalidation marker.
func NewSecurityStamp() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// Claim is a stored key/value claim attached to a user.
type Claim struct {
	Type  string `json:"type" db:"claim_type"`
	Value string `json:"value" db:"claim_value"`
}

// IdentityError is a single rule violation reported when creating a user.
type IdentityError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
