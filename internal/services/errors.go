package services

import "errors"

// Authentication and password-reset failures surfaced to callers. Handlers
// match these with errors.Is and map them to HTTP statuses.
var (
	// ErrInvalidCredentials covers both "no such user" and "wrong password"
	// so the response cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrPendingApproval  = errors.New("account is pending admin approval")
	ErrRejected         = errors.New("account registration was rejected")
	ErrAccountNotActive = errors.New("account is not active")

	ErrEmailNotFound         = errors.New("no active account with that email")
	ErrWeakPassword          = errors.New("password must be at least 6 characters")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrNotificationFailed    = errors.New("failed to send notification")

	// ErrStoreUnavailable wraps datastore failures in the main flows; it is
	// never used for the best-effort audit path, which swallows errors.
	ErrStoreUnavailable = errors.New("datastore unavailable")

	ErrUsernameTaken     = errors.New("username already taken")
	ErrEmailRegistered   = errors.New("email already registered")
	ErrInvalidTransition = errors.New("invalid account status transition")
)
