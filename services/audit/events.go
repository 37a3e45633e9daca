package audit

import (
	"context"

	"github.com/upb/hotel-listing/models"
)

const resourceUser = "user"

// Recorder accepts audit entries without blocking the caller.
type Recorder interface {
	Record(ctx context.Context, entry *models.AuditLog)
}

// Nop discards every entry.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, *models.AuditLog) {}

// UserRegistered is recorded after a successful registration.
func UserRegistered(userID, email string) *models.AuditLog {
	return models.NewAuditLog(models.AuditActionUserRegistered, resourceUser).
		WithUser(userID).
		WithResource(userID).
		WithDetails(map[string]string{"email": email})
}

// LoginSucceeded is recorded when credentials check out.
func LoginSucceeded(userID string) *models.AuditLog {
	return models.NewAuditLog(models.AuditActionLoginSucceeded, resourceUser).
		WithUser(userID).
		WithResource(userID)
}

// LoginFailed is recorded for unknown emails and bad passwords alike.
func LoginFailed(email string) *models.AuditLog {
	return models.NewAuditLog(models.AuditActionLoginFailed, resourceUser).
		WithDetails(map[string]string{"email": email})
}

// TokenRefreshed is recorded after a successful rotation.
func TokenRefreshed(userID string) *models.AuditLog {
	return models.NewAuditLog(models.AuditActionTokenRefreshed, "token").
		WithUser(userID).
		WithResource(userID)
}

// RefreshRejected is recorded when a refresh fails before the token is checked.
func RefreshRejected(userID, reason string) *models.AuditLog {
	return models.NewAuditLog(models.AuditActionTokenRefreshRejected, "token").
		WithUser(userID).
		WithDetails(map[string]string{"reason": reason})
}

// ReplayDetected is recorded when a stale or unknown refresh token is presented.
func ReplayDetected(userID string) *models.AuditLog {
	return models.NewAuditLog(models.AuditActionTokenReplayDetected, "token").
		WithUser(userID).
		WithResource(userID)
}
