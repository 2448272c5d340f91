package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/daybook-app/daybook/internal/cache"
	"github.com/daybook-app/daybook/internal/calendar/domain"
	"github.com/daybook-app/daybook/internal/config"
	"github.com/daybook-app/daybook/internal/googleoauth"
	identitydomain "github.com/daybook-app/daybook/internal/identity/domain"
	"github.com/daybook-app/daybook/internal/observability"
	"github.com/daybook-app/daybook/internal/statetoken"
	"go.uber.org/zap"
)

const (
	defaultCalendarBaseURL = "https://www.googleapis.com/calendar/v3"

	// mintCacheTTL caps how long a freshly minted token may be re-served by
	// the minting endpoint, so a buggy client cannot trigger a mint storm.
	mintCacheTTL = time.Minute
)

type Service struct {
	log       *zap.Logger
	codec     *statetoken.Codec
	oauth     *googleoauth.Service
	identity  identitydomain.Service
	tokens    domain.TokenRepository
	metrics   *observability.HTTPMetrics
	mintCache cache.Cache[string, domain.MintedToken]

	frontendBaseURL string
	calendarBaseURL string
	httpClient      *http.Client
	now             func() time.Time
}

func New(
	log *zap.Logger,
	cfg config.Config,
	codec *statetoken.Codec,
	oauth *googleoauth.Service,
	identity identitydomain.Service,
	tokens domain.TokenRepository,
	metrics *observability.HTTPMetrics,
) domain.Service {
	base := cfg.Google.CalendarBaseURL
	if base == "" {
		base = defaultCalendarBaseURL
	}
	return &Service{
		log:             log.Named("calendar.service"),
		codec:           codec,
		oauth:           oauth,
		identity:        identity,
		tokens:          tokens,
		metrics:         metrics,
		mintCache:       cache.NewTTLCache[string, domain.MintedToken](),
		frontendBaseURL: strings.TrimRight(cfg.FrontendBaseURL, "/"),
		calendarBaseURL: strings.TrimRight(base, "/"),
		httpClient:      http.DefaultClient,
		now:             time.Now,
	}
}

func (s *Service) LoginURL() (string, error) {
	state, err := s.codec.Sign(statetoken.Payload{Mode: statetoken.ModeLogin})
	if err != nil {
		return "", err
	}
	return s.oauth.AuthCodeURL(state), nil
}

func (s *Service) ConnectURL(uid string) (string, error) {
	state, err := s.codec.Sign(statetoken.Payload{UID: uid, Mode: statetoken.ModeConnect})
	if err != nil {
		return "", err
	}
	return s.oauth.AuthCodeURL(state), nil
}

// Callback is a strict sequence of steps; any failure aborts the flow with no
// partial state. The redirect is only built after token storage completes.
func (s *Service) Callback(ctx context.Context, state, code string) (*domain.CallbackResult, error) {
	payload, err := s.codec.Verify(state)
	if err != nil {
		return nil, err
	}

	bundle, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	switch payload.Mode {
	case statetoken.ModeLogin:
		return s.completeLogin(ctx, bundle)
	case statetoken.ModeConnect:
		return s.completeConnect(ctx, payload.UID, bundle)
	default:
		return nil, statetoken.ErrInvalidState
	}
}

func (s *Service) completeLogin(ctx context.Context, bundle *googleoauth.TokenBundle) (*domain.CallbackResult, error) {
	profile, err := s.oauth.FetchProfile(ctx, bundle.AccessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.identity.ResolveOrCreate(ctx, identitydomain.Profile{
		Subject:     profile.Subject,
		Email:       profile.Email,
		DisplayName: profile.Name,
	})
	if err != nil {
		return nil, err
	}

	// The provider only issues a refresh token on first consent or forced
	// re-consent; store it whenever one arrives.
	if bundle.RefreshToken != "" {
		if err := s.storeBundle(ctx, user.ID.String(), bundle); err != nil {
			return nil, err
		}
	}

	session, err := s.identity.IssueToken(user)
	if err != nil {
		return nil, err
	}

	return &domain.CallbackResult{
		RedirectURL: s.frontendBaseURL + "/auth/callback?token=" + url.QueryEscape(session),
	}, nil
}

func (s *Service) completeConnect(ctx context.Context, uid string, bundle *googleoauth.TokenBundle) (*domain.CallbackResult, error) {
	if bundle.RefreshToken == "" {
		// Consent without a refresh token is only acceptable when one is
		// already on file.
		if _, err := s.tokens.Get(ctx, uid); err != nil {
			if errors.Is(err, domain.ErrNotConnected) {
				return nil, domain.ErrNoRefreshToken
			}
			return nil, err
		}
	} else if err := s.storeBundle(ctx, uid, bundle); err != nil {
		return nil, err
	}

	return &domain.CallbackResult{
		RedirectURL: s.frontendBaseURL + "/schedule?calendar=connected",
	}, nil
}

func (s *Service) storeBundle(ctx context.Context, uid string, bundle *googleoauth.TokenBundle) error {
	upsert := domain.TokenUpsert{RefreshToken: bundle.RefreshToken}
	if bundle.Scope != "" {
		scope := bundle.Scope
		upsert.Scope = &scope
	}
	if bundle.TokenType != "" {
		tokenType := bundle.TokenType
		upsert.TokenType = &tokenType
	}
	if err := s.tokens.Upsert(ctx, uid, upsert); err != nil {
		return err
	}
	s.mintCache.Delete(uid)
	s.log.Info("refresh token stored", zap.String("uid", uid))
	return nil
}

func (s *Service) MintAccessToken(ctx context.Context, uid string) (*domain.MintedToken, error) {
	if cached, ok := s.mintCache.Get(uid); ok {
		return &cached, nil
	}

	record, err := s.tokens.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	minted, err := s.oauth.Mint(ctx, record.RefreshToken)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveMint()

	token := domain.MintedToken{AccessToken: minted.Token, ExpiresAt: minted.ExpiresAt}
	if token.ExpiresAt > 0 {
		ttl := mintCacheTTL
		if remaining := time.Until(time.UnixMilli(token.ExpiresAt)); remaining < ttl {
			ttl = remaining
		}
		s.mintCache.Set(uid, token, ttl)
	}
	return &token, nil
}

func (s *Service) Connected(ctx context.Context, uid string) (bool, error) {
	_, err := s.tokens.Get(ctx, uid)
	if errors.Is(err, domain.ErrNotConnected) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) ListEvents(ctx context.Context, uid string, req domain.ListEventsRequest) (json.RawMessage, error) {
	minted, err := s.MintAccessToken(ctx, uid)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("singleEvents", "true")
	query.Set("orderBy", "startTime")
	if req.TimeMin != "" {
		query.Set("timeMin", req.TimeMin)
	}
	if req.TimeMax != "" {
		query.Set("timeMax", req.TimeMax)
	}
	if req.MaxResults > 0 {
		query.Set("maxResults", fmt.Sprintf("%d", req.MaxResults))
	}

	endpoint := s.calendarBaseURL + "/calendars/primary/events?" + query.Encode()
	return s.providerRequest(ctx, http.MethodGet, endpoint, minted.AccessToken, nil)
}

func (s *Service) CreateEvent(ctx context.Context, uid string, event domain.EventInput) (json.RawMessage, error) {
	if strings.TrimSpace(event.Summary) == "" || event.Start == "" || event.End == "" {
		return nil, domain.ErrInvalidEvent
	}

	minted, err := s.MintAccessToken(ctx, uid)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(providerEvent(event))
	if err != nil {
		return nil, err
	}

	endpoint := s.calendarBaseURL + "/calendars/primary/events"
	return s.providerRequest(ctx, http.MethodPost, endpoint, minted.AccessToken, body)
}

func (s *Service) providerRequest(ctx context.Context, method, endpoint, accessToken string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, domain.ErrProviderUnavailable
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		return json.RawMessage(payload), nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		s.log.Warn("provider rejected access token", zap.Int("status", resp.StatusCode))
		return nil, domain.ErrProviderAuth
	case resp.StatusCode >= http.StatusInternalServerError:
		s.log.Warn("provider unavailable", zap.Int("status", resp.StatusCode))
		return nil, domain.ErrProviderUnavailable
	default:
		s.log.Warn("provider request failed", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("provider request failed with status %d", resp.StatusCode)
	}
}

// providerEvent shapes an EventInput the way the provider's events API
// expects: dateTime for timed events, date-only for all-day ones.
func providerEvent(event domain.EventInput) map[string]any {
	body := map[string]any{
		"summary": event.Summary,
	}
	if event.Description != "" {
		body["description"] = event.Description
	}
	if event.Location != "" {
		body["location"] = event.Location
	}
	if event.AllDay {
		body["start"] = map[string]string{"date": datePart(event.Start)}
		body["end"] = map[string]string{"date": datePart(event.End)}
	} else {
		body["start"] = map[string]string{"dateTime": event.Start}
		body["end"] = map[string]string{"dateTime": event.End}
	}
	return body
}

func datePart(timestamp string) string {
	if len(timestamp) >= 10 {
		return timestamp[:10]
	}
	return timestamp
}
