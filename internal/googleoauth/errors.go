package googleoauth

import "errors"

var (
	ErrNotConfigured  = errors.New("google oauth client is not configured")
	ErrInvalidRequest = errors.New("invalid oauth request")
	ErrUnauthorized   = errors.New("provider rejected the request")

	// ErrRefreshRevoked means the stored refresh token is no longer honored by
	// the provider. Callers must treat the calendar as disconnected instead of
	// retrying.
	ErrRefreshRevoked = errors.New("refresh token revoked")

	// ErrNoEmail means the provider profile carries no email address, which the
	// login flow cannot proceed without.
	ErrNoEmail = errors.New("provider profile has no email")
)
