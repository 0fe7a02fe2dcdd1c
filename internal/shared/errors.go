package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig  = fmt.Errorf("configuration not found")
	ErrInvalidConfig  = fmt.Errorf("invalid configuration")
	ErrNotConfigured  = fmt.Errorf("platform not configured")
	ErrMissingSecrets = fmt.Errorf("missing client credentials")

	// Authentication and handshake errors
	ErrCSRF             = fmt.Errorf("state parameter mismatch")
	ErrMissingCode      = fmt.Errorf("authorization code not received")
	ErrAuthExchange     = fmt.Errorf("token exchange failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrNoHandshake      = fmt.Errorf("no pending authorization")

	// Posting and API errors
	ErrValidation         = fmt.Errorf("invalid input")
	ErrPlatformAPI        = fmt.Errorf("platform API error")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNoPostingMethod    = fmt.Errorf("no posting method")
)
