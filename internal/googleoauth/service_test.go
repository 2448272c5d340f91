package googleoauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/daybook-app/daybook/internal/config"
	"go.uber.org/zap"
)

func newTestService(t *testing.T, tokenURL, userinfoURL string) *Service {
	t.Helper()

	cfg := config.Config{
		Google: config.GoogleConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "http://localhost/callback",
			TokenURL:     tokenURL,
			UserinfoURL:  userinfoURL,
		},
	}
	svc, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func TestAuthCodeURLRequestsOfflineConsent(t *testing.T) {
	svc := newTestService(t, "http://localhost/token", "http://localhost/userinfo")

	raw := svc.AuthCodeURL("state-token")
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	query := parsed.Query()
	if query.Get("access_type") != "offline" {
		t.Fatalf("expected access_type=offline, got %q", query.Get("access_type"))
	}
	if query.Get("prompt") != "consent" {
		t.Fatalf("expected prompt=consent, got %q", query.Get("prompt"))
	}
	if query.Get("state") != "state-token" {
		t.Fatalf("expected state round-trip, got %q", query.Get("state"))
	}
}

func TestExchangeReturnsRefreshToken(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.Form.Get("grant_type") != "authorization_code" {
			t.Fatalf("unexpected grant_type %q", r.Form.Get("grant_type"))
		}
		if r.Form.Get("code") != "the-code" {
			t.Fatalf("unexpected code %q", r.Form.Get("code"))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at-1",
			"refresh_token": "rt-1",
			"token_type":    "Bearer",
			"scope":         "calendar.events",
			"expires_in":    3600,
		})
	}))
	defer provider.Close()

	svc := newTestService(t, provider.URL, "http://localhost/userinfo")

	bundle, err := svc.Exchange(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if bundle.AccessToken != "at-1" || bundle.RefreshToken != "rt-1" {
		t.Fatalf("unexpected bundle: %+v", bundle)
	}
	if bundle.Scope != "calendar.events" {
		t.Fatalf("expected scope echo, got %q", bundle.Scope)
	}
}

func TestMintClassifiesRevokedGrant(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer provider.Close()

	svc := newTestService(t, provider.URL, "http://localhost/userinfo")

	_, err := svc.Mint(context.Background(), "revoked-rt")
	if err != ErrRefreshRevoked {
		t.Fatalf("expected ErrRefreshRevoked, got %v", err)
	}
}

func TestMintReturnsExpiry(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.Form.Get("grant_type") != "refresh_token" {
			t.Fatalf("unexpected grant_type %q", r.Form.Get("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "minted-at",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer provider.Close()

	svc := newTestService(t, provider.URL, "http://localhost/userinfo")

	minted, err := svc.Mint(context.Background(), "rt-1")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if minted.Token != "minted-at" {
		t.Fatalf("unexpected token %q", minted.Token)
	}
	if minted.ExpiresAt == 0 {
		t.Fatal("expected expiry to be set")
	}
}

func TestFetchProfileRequiresEmail(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Fatalf("expected bearer auth, got %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"g-123","name":"No Email"}`))
	}))
	defer provider.Close()

	svc := newTestService(t, "http://localhost/token", provider.URL)

	_, err := svc.FetchProfile(context.Background(), "at-1")
	if err != ErrNoEmail {
		t.Fatalf("expected ErrNoEmail, got %v", err)
	}
}

func TestFetchProfileNormalizesEmail(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"g-123","email":" Alice@Example.com ","name":"Alice"}`))
	}))
	defer provider.Close()

	svc := newTestService(t, "http://localhost/token", provider.URL)

	profile, err := svc.FetchProfile(context.Background(), "at-1")
	if err != nil {
		t.Fatalf("fetch profile: %v", err)
	}
	if profile.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", profile.Email)
	}
}
