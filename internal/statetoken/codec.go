// Package statetoken signs and verifies the short-lived token that correlates
// an OAuth redirect round-trip with the session that initiated it.
package statetoken

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTTL = 10 * time.Minute

var (
	ErrMissingSecret = errors.New("state token secret is not configured")
	ErrInvalidState  = errors.New("invalid state token")
)

// Mode distinguishes the two OAuth flows.
type Mode string

const (
	ModeLogin   Mode = "login"
	ModeConnect Mode = "connect"
)

// Payload is what a state token carries across the redirect.
// Either Mode is "login" and UID is empty, or Mode is "connect" and UID names
// the user connecting their calendar. Any other shape is invalid.
type Payload struct {
	UID  string
	Mode Mode
}

func (p Payload) valid() bool {
	switch p.Mode {
	case ModeLogin:
		return strings.TrimSpace(p.UID) == ""
	case ModeConnect:
		return strings.TrimSpace(p.UID) != ""
	default:
		return false
	}
}

type claims struct {
	jwt.RegisteredClaims
	UID  string `json:"uid,omitempty"`
	Mode string `json:"mode"`
}

// Codec signs and verifies state tokens.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(secret string) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	return &Codec{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		now:    time.Now,
	}, nil
}

func (c *Codec) Sign(p Payload) (string, error) {
	if !p.valid() {
		return "", ErrInvalidState
	}

	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		UID:  p.UID,
		Mode: string(p.Mode),
	})

	return token.SignedString(c.secret)
}

func (c *Codec) Verify(raw string) (Payload, error) {
	parsed := &claims{}
	token, err := jwt.ParseWithClaims(raw, parsed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidState
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil || !token.Valid {
		return Payload{}, ErrInvalidState
	}

	payload := Payload{UID: parsed.UID, Mode: Mode(parsed.Mode)}
	if !payload.valid() {
		return Payload{}, ErrInvalidState
	}
	return payload, nil
}
