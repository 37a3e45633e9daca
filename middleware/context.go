package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"

	// ClientKey is the context key for the caller's address and user agent
	ClientKey contextKey = "client"
)

// Claims are the verified access-token claims of the caller
type Claims struct {
	Subject string
	Email   string
	UserID  string
	Roles   []string
	TokenID string
}

// HasRole reports whether the caller holds role
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ClientInfo identifies where a request came from
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// GetRequestIDFromContext retrieves the request ID from context. IDs assigned
// by chi's RequestID middleware are used when none was set explicitly.
func GetRequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return chimw.GetReqID(ctx)
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetClaimsFromContext retrieves JWT claims from context
func GetClaimsFromContext(ctx context.Context) *Claims {
	if val := ctx.Value(ClaimsKey); val != nil {
		if claims, ok := val.(*Claims); ok {
			return claims
		}
	}
	return nil
}

// WithClaims adds JWT claims to the context
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetClientFromContext retrieves client info from context
func GetClientFromContext(ctx context.Context) ClientInfo {
	if val := ctx.Value(ClientKey); val != nil {
		if info, ok := val.(ClientInfo); ok {
			return info
		}
	}
	return ClientInfo{}
}

// WithClient adds client info to the context
func WithClient(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, ClientKey, info)
}

// RequestMeta reads request id, client ip and user agent for audit records.
func RequestMeta(ctx context.Context) (requestID, ip, userAgent string) {
	client := GetClientFromContext(ctx)
	return GetRequestIDFromContext(ctx), client.IPAddress, client.UserAgent
}
