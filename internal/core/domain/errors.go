package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAccessDenied indicates the user has no access to the account.
	ErrAccessDenied = errors.New("access denied")

	// ErrSyncDisabled indicates snapshot syncing is disabled in config.
	ErrSyncDisabled = errors.New("sync disabled")

	// Authentication errors. Callers recover from these locally by
	// treating the connector as disconnected; they never crash a caller.

	// ErrNoToken indicates the account has no stored token.
	ErrNoToken = errors.New("no stored token")

	// ErrAuthExpired indicates the token expired and cannot be refreshed.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrTokenRefreshFailed indicates a token refresh attempt failed.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// ErrStateMismatch indicates the OAuth callback state did not match
	// the expected CSRF state.
	ErrStateMismatch = errors.New("oauth state mismatch")

	// ErrOwnerRole indicates an attempt to change or revoke the account
	// owner's role. Ownership cannot be reassigned.
	ErrOwnerRole = errors.New("owner role cannot be changed")
)

// IsAuthError returns true for errors that mean "treat the connector as
// disconnected" rather than "something is broken".
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNoToken) ||
		errors.Is(err, ErrAuthExpired) ||
		errors.Is(err, ErrTokenRefreshFailed)
}
