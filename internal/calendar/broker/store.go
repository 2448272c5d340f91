package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/daybook-app/daybook/internal/calendar/domain"
	"github.com/redis/go-redis/v9"
)

// defaultStoreTTL bounds durable entries whose token reported no expiry.
const defaultStoreTTL = time.Hour

// TokenStore is the durable layer of the access-token cache, keyed per uid so
// credentials can never cross identities.
type TokenStore interface {
	Get(ctx context.Context, uid string) (*domain.MintedToken, bool, error)
	Set(ctx context.Context, uid string, token domain.MintedToken) error
	Delete(ctx context.Context, uid string) error
}

// MemoryTokenStore keeps tokens in-process. Used by tests and the CLI when no
// redis is configured.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]domain.MintedToken
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]domain.MintedToken)}
}

func (s *MemoryTokenStore) Get(_ context.Context, uid string) (*domain.MintedToken, bool, error) {
	s.mu.RLock()
	token, ok := s.tokens[uid]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return &token, true, nil
}

func (s *MemoryTokenStore) Set(_ context.Context, uid string, token domain.MintedToken) error {
	s.mu.Lock()
	s.tokens[uid] = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryTokenStore) Delete(_ context.Context, uid string) error {
	s.mu.Lock()
	delete(s.tokens, uid)
	s.mu.Unlock()
	return nil
}

// RedisTokenStore persists minted tokens under `<namespace>:<uid>`. Entries
// expire with the token itself, so redis never outlives the credential.
type RedisTokenStore struct {
	client    redis.UniversalClient
	namespace string
	now       func() time.Time
}

func NewRedisTokenStore(client redis.UniversalClient, namespace string) *RedisTokenStore {
	if namespace == "" {
		namespace = "daybook:gcal"
	}
	return &RedisTokenStore{client: client, namespace: namespace, now: time.Now}
}

func (s *RedisTokenStore) key(uid string) string {
	return fmt.Sprintf("%s:%s", s.namespace, uid)
}

func (s *RedisTokenStore) Get(ctx context.Context, uid string) (*domain.MintedToken, bool, error) {
	raw, err := s.client.Get(ctx, s.key(uid)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load token: %w", err)
	}

	var token domain.MintedToken
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, false, fmt.Errorf("decode token: %w", err)
	}
	return &token, true, nil
}

func (s *RedisTokenStore) Set(ctx context.Context, uid string, token domain.MintedToken) error {
	payload, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}

	ttl := defaultStoreTTL
	if token.ExpiresAt > 0 {
		if remaining := time.UnixMilli(token.ExpiresAt).Sub(s.now()); remaining > 0 {
			ttl = remaining
		}
	}
	if err := s.client.Set(ctx, s.key(uid), payload, ttl).Err(); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, uid string) error {
	if err := s.client.Del(ctx, s.key(uid)).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
