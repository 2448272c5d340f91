package domain

import "context"

// TokenRepository is the durable refresh-token store.
type TokenRepository interface {
	// Get returns the stored record or ErrNotConnected.
	Get(ctx context.Context, uid string) (*RefreshTokenRecord, error)

	// Upsert merges the supplied fields into the user's record and stamps
	// UpdatedAt. Omitted optional fields keep their prior values.
	Upsert(ctx context.Context, uid string, upsert TokenUpsert) error
}
