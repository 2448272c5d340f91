package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/daybook-app/daybook/internal/calendar/domain"
)

// HTTPMinter mints access tokens through the backend's minting endpoint using
// the caller's identity token.
type HTTPMinter struct {
	baseURL       string
	identityToken string
	httpClient    *http.Client
}

func NewHTTPMinter(baseURL, identityToken string) *HTTPMinter {
	return &HTTPMinter{
		baseURL:       baseURL,
		identityToken: identityToken,
		httpClient:    http.DefaultClient,
	}
}

func (m *HTTPMinter) Mint(ctx context.Context, uid string) (*domain.MintedToken, error) {
	_ = uid // the backend derives the uid from the identity token

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/api/calendar/access-token", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+m.identityToken)
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var token domain.MintedToken
		if err := json.Unmarshal(body, &token); err != nil {
			return nil, fmt.Errorf("decode minted token: %w", err)
		}
		return &token, nil
	case http.StatusConflict:
		return nil, domain.ErrNotConnected
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, domain.ErrProviderAuth
	default:
		return nil, fmt.Errorf("mint failed with status %d", resp.StatusCode)
	}
}
