// Package domain contains core types for the calendar integration.
package domain

import (
	"fmt"
	"strings"
)

// RefreshTokenRecord is the durable per-user OAuth refresh token plus the
// metadata the provider echoed when it was issued. One record per uid.
type RefreshTokenRecord struct {
	UID          string  `gorm:"primaryKey;column:uid;type:text"`
	RefreshToken string  `gorm:"column:refresh_token;type:text;not null"`
	Scope        *string `gorm:"column:scope;type:text"`
	TokenType    *string `gorm:"column:token_type;type:text"`
	UpdatedAt    int64   `gorm:"column:updated_at;not null"`
}

// TableName sets the database table name.
func (RefreshTokenRecord) TableName() string { return "calendar_refresh_tokens" }

// TokenUpsert carries the fields to merge into a user's record. Nil optional
// fields are preserved from the prior write, not cleared.
type TokenUpsert struct {
	RefreshToken string
	Scope        *string
	TokenType    *string
}

// MintedToken is a short-lived provider access token. ExpiresAt is epoch
// millis; zero means the provider did not report an expiry.
type MintedToken struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expiresAt,omitempty"`
}

// ListEventsRequest is the query window for an event listing.
type ListEventsRequest struct {
	TimeMin    string
	TimeMax    string
	MaxResults int
}

// CacheKey namespaces a query window under the requesting user so cached
// payloads can never leak across identities.
func (r ListEventsRequest) CacheKey(uid string) string {
	return strings.Join([]string{uid, r.TimeMin, r.TimeMax, fmt.Sprintf("%d", r.MaxResults)}, "|")
}

// EventInput is the payload for creating a calendar event. Start and End are
// RFC3339 timestamps; for all-day events only the date part is sent.
type EventInput struct {
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
	AllDay      bool   `json:"allDay,omitempty"`
}

// CallbackResult is where the OAuth callback sends the browser next.
type CallbackResult struct {
	RedirectURL string
}
