package models

import "time"

// TokenKey names a single stored authentication token slot.
type TokenKey struct {
	UserID        string
	LoginProvider string
	Name          string
}

// UserToken is the value held in a token slot along with the security
// stamp that was current when it was issued.
type UserToken struct {
	UserID        string    `json:"userId" db:"user_id"`
	LoginProvider string    `json:"loginProvider" db:"login_provider"`
	Name          string    `json:"name" db:"name"`
	Value         string    `json:"value" db:"value"`
	SecurityStamp string    `json:"securityStamp" db:"security_stamp"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// TableName returns the table name for the UserToken model
func (UserToken) TableName() string {
	return "user_tokens"
}

// Key returns the slot this token lives in.
func (t *UserToken) Key() TokenKey {
	return TokenKey{UserID: t.UserID, LoginProvider: t.LoginProvider, Name: t.Name}
}
