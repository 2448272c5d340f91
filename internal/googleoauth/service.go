// Package googleoauth talks to Google's OAuth endpoints: consent URLs, code
// exchange, refresh-token minting and profile lookup.
package googleoauth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/daybook-app/daybook/internal/config"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	defaultAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultTokenURL    = "https://oauth2.googleapis.com/token"
	defaultUserinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

var defaultScopes = []string{
	"openid",
	"email",
	"profile",
	"https://www.googleapis.com/auth/calendar.events",
}

// TokenBundle is the result of an authorization-code exchange. RefreshToken is
// only present when consent was freshly granted.
type TokenBundle struct {
	AccessToken  string
	RefreshToken string
	Scope        string
	TokenType    string
	Expiry       time.Time
}

// Minted is a short-lived access token. ExpiresAt is epoch millis, zero when
// the provider did not report an expiry.
type Minted struct {
	Token     string
	ExpiresAt int64
}

// Profile is the subset of the userinfo response the app needs.
type Profile struct {
	Subject string
	Email   string
	Name    string
}

type Service struct {
	oauth       *oauth2.Config
	userinfoURL string
	httpClient  *http.Client
	log         *zap.Logger
}

func New(cfg config.Config, log *zap.Logger) (*Service, error) {
	gcfg := cfg.Google
	if strings.TrimSpace(gcfg.ClientID) == "" || strings.TrimSpace(gcfg.ClientSecret) == "" {
		return nil, ErrNotConfigured
	}

	scopes := gcfg.Scopes
	if len(scopes) == 0 {
		scopes = defaultScopes
	}
	authURL := gcfg.AuthURL
	if authURL == "" {
		authURL = defaultAuthURL
	}
	tokenURL := gcfg.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	userinfoURL := gcfg.UserinfoURL
	if userinfoURL == "" {
		userinfoURL = defaultUserinfoURL
	}

	return &Service{
		oauth: &oauth2.Config{
			ClientID:     gcfg.ClientID,
			ClientSecret: gcfg.ClientSecret,
			RedirectURL:  gcfg.RedirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
			},
		},
		userinfoURL: userinfoURL,
		httpClient:  http.DefaultClient,
		log:         log.Named("googleoauth"),
	}, nil
}

// AuthCodeURL builds the consent URL. Offline access plus forced consent so a
// refresh token is issued every time.
func (s *Service) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange swaps an authorization code for tokens.
func (s *Service) Exchange(ctx context.Context, code string) (*TokenBundle, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrInvalidRequest
	}

	token, err := s.oauth.Exchange(s.clientContext(ctx), code)
	if err != nil {
		return nil, s.classifyTokenError("exchange", err)
	}

	return &TokenBundle{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Scope:        extraString(token, "scope"),
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}, nil
}

// Mint exchanges a stored refresh token for a fresh access token.
func (s *Service) Mint(ctx context.Context, refreshToken string) (*Minted, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrRefreshRevoked
	}

	source := s.oauth.TokenSource(s.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, s.classifyTokenError("mint", err)
	}

	minted := &Minted{Token: token.AccessToken}
	if !token.Expiry.IsZero() {
		minted.ExpiresAt = token.Expiry.UnixMilli()
	}
	return minted, nil
}

// FetchProfile loads the userinfo profile for an access token.
func (s *Service) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrUnauthorized
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userinfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		s.log.Warn("userinfo request failed", zap.Int("status", resp.StatusCode))
		return nil, ErrUnauthorized
	}

	var payload struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, ErrUnauthorized
	}
	if strings.TrimSpace(payload.Email) == "" {
		return nil, ErrNoEmail
	}
	if payload.Name == "" {
		payload.Name = payload.Email
	}

	return &Profile{
		Subject: payload.Sub,
		Email:   strings.ToLower(strings.TrimSpace(payload.Email)),
		Name:    payload.Name,
	}, nil
}

func (s *Service) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}

func (s *Service) classifyTokenError(op string, err error) error {
	if ctxErr := contextError(err); ctxErr != nil {
		return ctxErr
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		s.log.Warn("token endpoint rejected request",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error_code", retrieveErr.ErrorCode),
		)
		if retrieveErr.ErrorCode == "invalid_grant" || status == http.StatusUnauthorized || status == http.StatusForbidden {
			return ErrRefreshRevoked
		}
		return ErrUnauthorized
	}

	return err
}

func contextError(err error) error {
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return context.DeadlineExceeded
	}
	return nil
}

func extraString(token *oauth2.Token, key string) string {
	if value, ok := token.Extra(key).(string); ok {
		return value
	}
	return ""
}
