// Package contextkeys provides centralized context key definitions.
//
// All context keys used across the application are defined here. This
// prevents typos, documents dependencies, and makes key usage discoverable.
package contextkeys

// Key is the type for context keys to prevent collisions
type Key string

const (
	// ClaimsKey contains *auth.Claims
	// Set by: middleware.Authenticator (pkg/middleware/auth.go)
	// Required by: all protected API endpoints
	ClaimsKey Key = "session_claims"

	// RequestIDKey contains the request ID string (UUID)
	// Set by: middleware.RequestID
	// Used by: logger, audit trail
	RequestIDKey Key = "request_id"

	// AccountIDKey contains the authenticated account ID string
	// Set by: middleware.Authenticator
	// Used by: logger, audit trail
	AccountIDKey Key = "account_id"

	// LoggerKey contains *observability.Logger
	// Set by: observability.WithLogger
	LoggerKey Key = "logger"
)
