// Package broker is the client side of the calendar access broker: a per-user
// access-token cache with single-flight minting, and a fetch orchestrator that
// talks to the calendar provider directly or through the backend proxy.
package broker

import (
	"context"
	"sync"
	"time"

	"github.com/daybook-app/daybook/internal/calendar/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// FreshnessSkew is the safety margin before a token's reported expiry at
// which it is already treated as stale, covering clock drift and in-flight
// request latency.
const FreshnessSkew = 2 * time.Minute

// Minter produces a fresh access token for a user.
type Minter interface {
	Mint(ctx context.Context, uid string) (*domain.MintedToken, error)
}

// TokenCache owns the per-uid access-token state: an in-memory layer, a
// durable store, and a single-flight group that collapses concurrent mint
// requests for the same uid into one.
type TokenCache struct {
	minter Minter
	store  TokenStore

	mu     sync.RWMutex
	memory map[string]domain.MintedToken
	flight singleflight.Group

	skew time.Duration
	now  func() time.Time
	log  *zap.Logger
}

func NewTokenCache(minter Minter, store TokenStore, log *zap.Logger) *TokenCache {
	if store == nil {
		store = NewMemoryTokenStore()
	}
	return &TokenCache{
		minter: minter,
		store:  store,
		memory: make(map[string]domain.MintedToken),
		skew:   FreshnessSkew,
		now:    time.Now,
		log:    log.Named("broker.tokens"),
	}
}

// Token returns a fresh access token for uid, minting one if necessary.
// Concurrent callers for the same uid share a single mint.
func (c *TokenCache) Token(ctx context.Context, uid string) (*domain.MintedToken, error) {
	c.mu.RLock()
	cached, ok := c.memory[uid]
	c.mu.RUnlock()
	if ok && c.fresh(cached) {
		return &cached, nil
	}

	if stored, found, err := c.store.Get(ctx, uid); err == nil && found && c.fresh(*stored) {
		c.mu.Lock()
		c.memory[uid] = *stored
		c.mu.Unlock()
		return stored, nil
	} else if err != nil {
		c.log.Warn("durable token lookup failed", zap.String("uid", uid), zap.Error(err))
	}

	value, err, _ := c.flight.Do(uid, func() (any, error) {
		token, err := c.minter.Mint(ctx, uid)
		if err != nil {
			return nil, err
		}
		if ctx.Err() != nil {
			// The initiating caller went away mid-mint; drop the result
			// without touching shared state.
			return nil, ctx.Err()
		}

		c.mu.Lock()
		c.memory[uid] = *token
		c.mu.Unlock()
		if storeErr := c.store.Set(ctx, uid, *token); storeErr != nil {
			c.log.Warn("durable token write failed", zap.String("uid", uid), zap.Error(storeErr))
		}
		return token, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*domain.MintedToken), nil
}

// Evict drops the cached token for uid from both layers. Called before a
// remint when the provider rejects a cached token.
func (c *TokenCache) Evict(ctx context.Context, uid string) {
	c.mu.Lock()
	delete(c.memory, uid)
	c.mu.Unlock()
	if err := c.store.Delete(ctx, uid); err != nil {
		c.log.Warn("durable token delete failed", zap.String("uid", uid), zap.Error(err))
	}
}

// fresh treats tokens with unknown expiry as usable; everything else must
// clear the skew margin.
func (c *TokenCache) fresh(token domain.MintedToken) bool {
	if token.AccessToken == "" {
		return false
	}
	if token.ExpiresAt == 0 {
		return true
	}
	return c.now().UnixMilli() < token.ExpiresAt-c.skew.Milliseconds()
}
