package domain

import (
	"context"
	"encoding/json"
)

// Service is the calendar integration surface the HTTP layer exposes.
type Service interface {
	// LoginURL builds a consent URL for the login flow.
	LoginURL() (string, error)

	// ConnectURL builds a consent URL binding the round-trip to uid.
	ConnectURL(uid string) (string, error)

	// Callback runs the OAuth redirect state machine: verify state, exchange
	// code, then either log the user in or store their refresh token.
	Callback(ctx context.Context, state, code string) (*CallbackResult, error)

	// MintAccessToken exchanges the stored refresh token for a fresh access
	// token. ErrNotConnected when no token is on file.
	MintAccessToken(ctx context.Context, uid string) (*MintedToken, error)

	// Connected reports whether a refresh token is stored for uid.
	Connected(ctx context.Context, uid string) (bool, error)

	// ListEvents mints server-side and lists events from the provider,
	// returning its payload verbatim.
	ListEvents(ctx context.Context, uid string, req ListEventsRequest) (json.RawMessage, error)

	// CreateEvent posts a new event through the provider.
	CreateEvent(ctx context.Context, uid string, event EventInput) (json.RawMessage, error)
}
