package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/daybook-app/daybook/internal/calendar/domain"
)

const (
	// maxTransientRetries is the number of extra attempts granted after a
	// provider 5xx or transport failure.
	maxTransientRetries = 2

	defaultProviderBaseURL = "https://www.googleapis.com/calendar/v3"
)

// Broker modes.
const (
	ModeDirect = "direct"
	ModeProxy  = "proxy"
)

// Config selects how the orchestrator reaches calendar data: direct against
// the provider with brokered tokens, or proxied through the backend.
type Config struct {
	Mode            string
	ProviderBaseURL string
	BackendBaseURL  string
	IdentityToken   string
}

// Orchestrator fetches calendar data for one user. In direct mode it holds a
// TokenCache and talks to the provider itself, reminting once on an auth
// failure and backing off on transient ones. In proxy mode it forwards reads
// to the backend and lets the server side deal with tokens.
type Orchestrator struct {
	mode            string
	providerBaseURL string
	backendBaseURL  string
	identityToken   string

	tokens     *TokenCache
	httpClient *http.Client
	sleep      func(ctx context.Context, d time.Duration) error
	log        *zap.Logger
}

func NewOrchestrator(cfg Config, tokens *TokenCache, log *zap.Logger) *Orchestrator {
	providerBaseURL := strings.TrimRight(cfg.ProviderBaseURL, "/")
	if providerBaseURL == "" {
		providerBaseURL = defaultProviderBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		mode:            cfg.Mode,
		providerBaseURL: providerBaseURL,
		backendBaseURL:  strings.TrimRight(cfg.BackendBaseURL, "/"),
		identityToken:   cfg.IdentityToken,
		tokens:          tokens,
		httpClient:      http.DefaultClient,
		sleep:           sleepContext,
		log:             log,
	}
}

// ListEvents returns the provider's raw events payload for the window in req.
func (o *Orchestrator) ListEvents(ctx context.Context, uid string, req domain.ListEventsRequest) (json.RawMessage, error) {
	if o.mode == ModeProxy {
		return o.listEventsProxy(ctx, req)
	}
	return o.listEventsDirect(ctx, uid, req)
}

func (o *Orchestrator) listEventsDirect(ctx context.Context, uid string, req domain.ListEventsRequest) (json.RawMessage, error) {
	reminted := false
	for attempt := 0; ; attempt++ {
		token, err := o.tokens.Token(ctx, uid)
		if err != nil {
			return nil, err
		}

		status, body, err := o.fetchProviderEvents(ctx, token.AccessToken, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt < maxTransientRetries {
				if err := o.backoff(ctx, attempt); err != nil {
					return nil, err
				}
				continue
			}
			return nil, domain.ErrProviderUnavailable
		}

		switch {
		case status >= 200 && status < 300:
			return body, nil
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			if reminted {
				return nil, domain.ErrProviderAuth
			}
			reminted = true
			o.tokens.Evict(ctx, uid)
			o.log.Debug("provider rejected token, reminting", zap.String("uid", uid))
			attempt--
			continue
		case status >= 500:
			if attempt < maxTransientRetries {
				if err := o.backoff(ctx, attempt); err != nil {
					return nil, err
				}
				continue
			}
			return nil, domain.ErrProviderUnavailable
		default:
			return nil, fmt.Errorf("provider returned status %d", status)
		}
	}
}

func (o *Orchestrator) fetchProviderEvents(ctx context.Context, accessToken string, req domain.ListEventsRequest) (int, []byte, error) {
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
		query.Set("maxResults", strconv.Itoa(req.MaxResults))
	}

	endpoint := o.providerBaseURL + "/calendars/primary/events?" + query.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func (o *Orchestrator) listEventsProxy(ctx context.Context, req domain.ListEventsRequest) (json.RawMessage, error) {
	query := url.Values{}
	if req.TimeMin != "" {
		query.Set("timeMin", req.TimeMin)
	}
	if req.TimeMax != "" {
		query.Set("timeMax", req.TimeMax)
	}
	if req.MaxResults > 0 {
		query.Set("maxResults", strconv.Itoa(req.MaxResults))
	}

	endpoint := o.backendBaseURL + "/api/calendar/events"
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	return o.backendRequest(ctx, http.MethodGet, endpoint, nil)
}

// CreateEvent always goes through the backend so that writes share one path
// regardless of mode.
func (o *Orchestrator) CreateEvent(ctx context.Context, event domain.EventInput) (json.RawMessage, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return o.backendRequest(ctx, http.MethodPost, o.backendBaseURL+"/api/calendar/events", payload)
}

func (o *Orchestrator) backendRequest(ctx context.Context, method, endpoint string, payload []byte) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+o.identityToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, domain.ErrProviderUnavailable
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrProviderAuth
	case resp.StatusCode == http.StatusConflict:
		return nil, domain.ErrNotConnected
	case resp.StatusCode >= 500:
		return nil, domain.ErrProviderUnavailable
	default:
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
}

func (o *Orchestrator) backoff(ctx context.Context, attempt int) error {
	return o.sleep(ctx, time.Duration(attempt+1)*time.Second)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
