package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/daybook-app/daybook/internal/calendar/domain"
	calendarrepo "github.com/daybook-app/daybook/internal/calendar/repository"
	"github.com/daybook-app/daybook/internal/config"
	"github.com/daybook-app/daybook/internal/googleoauth"
	identitydomain "github.com/daybook-app/daybook/internal/identity/domain"
	identityrepo "github.com/daybook-app/daybook/internal/identity/repository"
	identityservice "github.com/daybook-app/daybook/internal/identity/service"
	"github.com/daybook-app/daybook/internal/statetoken"
	"github.com/daybook-app/daybook/pkg/db"
	"go.uber.org/zap"
)

// fakeProvider stands in for Google's token, userinfo and calendar endpoints.
type fakeProvider struct {
	mux *http.ServeMux
	srv *httptest.Server

	mintCalls    atomic.Int32
	issueRefresh bool
	eventsStatus int
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	p := &fakeProvider{mux: http.NewServeMux(), issueRefresh: true, eventsStatus: http.StatusOK}
	p.mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.Form.Get("grant_type") {
		case "authorization_code":
			resp := map[string]any{
				"access_token": "at-consent",
				"token_type":   "Bearer",
				"scope":        "calendar.events",
				"expires_in":   3600,
			}
			if p.issueRefresh {
				resp["refresh_token"] = "rt-fresh"
			}
			_ = json.NewEncoder(w).Encode(resp)
		case "refresh_token":
			p.mintCalls.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "at-minted",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		default:
			t.Fatalf("unexpected grant_type %q", r.Form.Get("grant_type"))
		}
	})
	p.mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"g-1","email":"alice@example.com","name":"Alice"}`))
	})
	p.mux.HandleFunc("/calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		if p.eventsStatus != http.StatusOK {
			w.WriteHeader(p.eventsStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"summary":"standup"}]}`))
	})

	p.srv = httptest.NewServer(p.mux)
	t.Cleanup(p.srv.Close)
	return p
}

type fixture struct {
	svc      domain.Service
	tokens   domain.TokenRepository
	identity identitydomain.Service
	codec    *statetoken.Codec
	provider *fakeProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&identitydomain.User{}, &domain.RefreshTokenRecord{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	provider := newFakeProvider(t)

	cfg := config.Config{
		AuthTokenSecret: "test-secret",
		FrontendBaseURL: "http://front.test",
		Google: config.GoogleConfig{
			ClientID:        "client-id",
			ClientSecret:    "client-secret",
			RedirectURL:     "http://api.test/auth/google/callback",
			TokenURL:        provider.srv.URL + "/token",
			UserinfoURL:     provider.srv.URL + "/userinfo",
			CalendarBaseURL: provider.srv.URL,
		},
	}

	oauth, err := googleoauth.New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create oauth service: %v", err)
	}
	codec, err := statetoken.NewCodec(cfg.AuthTokenSecret)
	if err != nil {
		t.Fatalf("failed to create codec: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}
	identity, err := identityservice.New(zap.NewNop(), cfg, identityrepo.New(dbConn), node)
	if err != nil {
		t.Fatalf("failed to create identity service: %v", err)
	}
	tokens := calendarrepo.New(dbConn)

	return &fixture{
		svc:      New(zap.NewNop(), cfg, codec, oauth, identity, tokens, nil),
		tokens:   tokens,
		identity: identity,
		codec:    codec,
		provider: provider,
	}
}

func TestCallbackConnectStoresRefreshToken(t *testing.T) {
	f := newFixture(t)

	state, err := f.codec.Sign(statetoken.Payload{UID: "u1", Mode: statetoken.ModeConnect})
	if err != nil {
		t.Fatalf("sign state: %v", err)
	}

	result, err := f.svc.Callback(context.Background(), state, "the-code")
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if result.RedirectURL != "http://front.test/schedule?calendar=connected" {
		t.Fatalf("unexpected redirect %q", result.RedirectURL)
	}

	record, err := f.tokens.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	if record.RefreshToken != "rt-fresh" {
		t.Fatalf("expected rt-fresh, got %q", record.RefreshToken)
	}
}

func TestCallbackConnectWithoutRefreshTokenFails(t *testing.T) {
	f := newFixture(t)
	f.provider.issueRefresh = false

	state, err := f.codec.Sign(statetoken.Payload{UID: "u1", Mode: statetoken.ModeConnect})
	if err != nil {
		t.Fatalf("sign state: %v", err)
	}

	_, err = f.svc.Callback(context.Background(), state, "the-code")
	if err != domain.ErrNoRefreshToken {
		t.Fatalf("expected ErrNoRefreshToken, got %v", err)
	}

	if _, err := f.tokens.Get(context.Background(), "u1"); err != domain.ErrNotConnected {
		t.Fatalf("expected nothing stored, got %v", err)
	}
}

func TestCallbackConnectKeepsExistingToken(t *testing.T) {
	f := newFixture(t)
	f.provider.issueRefresh = false

	if err := f.tokens.Upsert(context.Background(), "u1", domain.TokenUpsert{RefreshToken: "rt-old"}); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	state, err := f.codec.Sign(statetoken.Payload{UID: "u1", Mode: statetoken.ModeConnect})
	if err != nil {
		t.Fatalf("sign state: %v", err)
	}

	if _, err := f.svc.Callback(context.Background(), state, "the-code"); err != nil {
		t.Fatalf("callback: %v", err)
	}

	record, err := f.tokens.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	if record.RefreshToken != "rt-old" {
		t.Fatalf("expected rt-old kept, got %q", record.RefreshToken)
	}
}

func TestCallbackLoginCreatesIdentityAndRedirects(t *testing.T) {
	f := newFixture(t)

	state, err := f.codec.Sign(statetoken.Payload{Mode: statetoken.ModeLogin})
	if err != nil {
		t.Fatalf("sign state: %v", err)
	}

	result, err := f.svc.Callback(context.Background(), state, "the-code")
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if !strings.HasPrefix(result.RedirectURL, "http://front.test/auth/callback?token=") {
		t.Fatalf("unexpected redirect %q", result.RedirectURL)
	}

	// The session token in the redirect must verify against the same identity.
	raw := strings.TrimPrefix(result.RedirectURL, "http://front.test/auth/callback?token=")
	uid, err := f.identity.VerifyToken(raw)
	if err != nil {
		t.Fatalf("verify session token: %v", err)
	}

	// Login consent issued a refresh token; it must be stored under the uid.
	record, err := f.tokens.Get(context.Background(), uid)
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	if record.RefreshToken != "rt-fresh" {
		t.Fatalf("expected rt-fresh, got %q", record.RefreshToken)
	}
}

func TestCallbackRejectsInvalidState(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Callback(context.Background(), "garbage", "the-code")
	if err != statetoken.ErrInvalidState {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestMintAccessTokenNotConnected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.MintAccessToken(context.Background(), "u1")
	if err != domain.ErrNotConnected {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestMintAccessTokenCachesBriefly(t *testing.T) {
	f := newFixture(t)

	if err := f.tokens.Upsert(context.Background(), "u1", domain.TokenUpsert{RefreshToken: "rt-1"}); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	first, err := f.svc.MintAccessToken(context.Background(), "u1")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	second, err := f.svc.MintAccessToken(context.Background(), "u1")
	if err != nil {
		t.Fatalf("mint again: %v", err)
	}
	if first.AccessToken != second.AccessToken {
		t.Fatal("expected cached token")
	}
	if calls := f.provider.mintCalls.Load(); calls != 1 {
		t.Fatalf("expected 1 provider mint, got %d", calls)
	}
}

func TestListEventsMapsAuthFailure(t *testing.T) {
	f := newFixture(t)
	f.provider.eventsStatus = http.StatusUnauthorized

	if err := f.tokens.Upsert(context.Background(), "u1", domain.TokenUpsert{RefreshToken: "rt-1"}); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	_, err := f.svc.ListEvents(context.Background(), "u1", domain.ListEventsRequest{})
	if err != domain.ErrProviderAuth {
		t.Fatalf("expected ErrProviderAuth, got %v", err)
	}
}

func TestListEventsReturnsPayload(t *testing.T) {
	f := newFixture(t)

	if err := f.tokens.Upsert(context.Background(), "u1", domain.TokenUpsert{RefreshToken: "rt-1"}); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	payload, err := f.svc.ListEvents(context.Background(), "u1", domain.ListEventsRequest{
		TimeMin:    "2026-09-01T00:00:00Z",
		TimeMax:    "2026-09-08T00:00:00Z",
		MaxResults: 50,
	})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if !strings.Contains(string(payload), "standup") {
		t.Fatalf("unexpected payload %s", payload)
	}
}
