package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	AuditActionUserRegistered       AuditAction = "user.registered"
	AuditActionLoginSucceeded       AuditAction = "user.login_succeeded"
	AuditActionLoginFailed          AuditAction = "user.login_failed"
	AuditActionTokenRefreshed       AuditAction = "token.refreshed"
	AuditActionTokenRefreshRejected AuditAction = "token.refresh_rejected"
	AuditActionTokenReplayDetected  AuditAction = "token.replay_detected"
)

// AuditLog represents an audit trail entry
type AuditLog struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	UserID       *string         `json:"userId,omitempty" db:"user_id"`
	Action       AuditAction     `json:"action" db:"action"`
	ResourceType string          `json:"resourceType" db:"resource_type"` // user, token
	ResourceID   *string         `json:"resourceId,omitempty" db:"resource_id"`
	Details      json.RawMessage `json:"details" db:"details"` // JSONB
	IPAddress    string          `json:"ipAddress" db:"ip_address"`
	UserAgent    string          `json:"userAgent" db:"user_agent"`
	RequestID    string          `json:"requestId" db:"request_id"`
	Timestamp    time.Time       `json:"timestamp" db:"timestamp"`
}

// TableName returns the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}

// NewAuditLog creates a new AuditLog instance
func NewAuditLog(action AuditAction, resourceType string) *AuditLog {
	return &AuditLog{
		ID:           uuid.New(),
		Action:       action,
		ResourceType: resourceType,
		Timestamp:    time.Now().UTC(),
	}
}

// WithUser sets the user ID
func (a *AuditLog) WithUser(userID string) *AuditLog {
	if userID != "" {
		a.UserID = &userID
	}
	return a
}

// WithResource sets the resource ID
func (a *AuditLog) WithResource(resourceID string) *AuditLog {
	a.ResourceID = &resourceID
	return a
}

// WithDetails sets the details
func (a *AuditLog) WithDetails(details interface{}) *AuditLog {
	if data, err := json.Marshal(details); err == nil {
		a.Details = data
	}
	return a
}

// WithRequest sets request metadata
func (a *AuditLog) WithRequest(requestID, ipAddress, userAgent string) *AuditLog {
	a.RequestID = requestID
	a.IPAddress = ipAddress
	a.UserAgent = userAgent
	return a
}
