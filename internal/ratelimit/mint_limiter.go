// Package ratelimit bounds per-user access to the token minting endpoint
// with a redis token bucket, so a misbehaving client cannot hammer the
// provider's refresh grant.
package ratelimit

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/daybook-app/daybook/internal/config"
)

const keyMint = "mint:uid:%s"

// MintLimiter rate limits token mints per uid. Disabled (allows everything)
// when redis is not configured.
type MintLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewMintLimiter(cfg config.Config, client *redis.Client) *MintLimiter {
	if client == nil || cfg.RateLimit.MintRate <= 0 || cfg.RateLimit.MintBurst <= 0 {
		return nil
	}
	return &MintLimiter{
		bucket: NewTokenBucket(client),
		rate:   cfg.RateLimit.MintRate,
		burst:  cfg.RateLimit.MintBurst,
	}
}

func (l *MintLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow reports whether uid may mint right now. Limiter errors fail open so
// a redis outage never blocks token access.
func (l *MintLimiter) Allow(ctx context.Context, uid string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	result, err := l.bucket.Allow(ctx, fmt.Sprintf(keyMint, uid), l.rate, l.burst)
	if err != nil {
		return true, err
	}
	return result.Allowed, nil
}
