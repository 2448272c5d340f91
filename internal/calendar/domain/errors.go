package domain

import "errors"

var (
	// ErrNotConnected means no refresh token is stored for the user. Clients
	// must prompt for connection, not retry.
	ErrNotConnected = errors.New("calendar not connected")

	// ErrNoRefreshToken means a connect-flow consent finished without the
	// provider issuing a refresh token and none was on file.
	ErrNoRefreshToken = errors.New("no refresh token received")

	// ErrProviderAuth means the provider rejected credentials that should have
	// been valid, including after a remint.
	ErrProviderAuth = errors.New("calendar provider rejected credentials")

	// ErrProviderUnavailable means the provider kept failing transiently after
	// bounded retries.
	ErrProviderUnavailable = errors.New("calendar provider unavailable")

	ErrInvalidEvent = errors.New("invalid event")
)
