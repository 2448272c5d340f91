package broker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/daybook-app/daybook/internal/calendar/domain"
)

type fakeMinter struct {
	calls int64
	token domain.MintedToken
	err   error

	// when set, Mint blocks until the channel is closed
	gate chan struct{}
	// when set, Mint blocks until the caller's context is done
	waitForCtx bool
}

func (m *fakeMinter) Mint(ctx context.Context, uid string) (*domain.MintedToken, error) {
	atomic.AddInt64(&m.calls, 1)
	if m.gate != nil {
		<-m.gate
	}
	if m.waitForCtx {
		<-ctx.Done()
	}
	if m.err != nil {
		return nil, m.err
	}
	token := m.token
	return &token, nil
}

func (m *fakeMinter) count() int64 { return atomic.LoadInt64(&m.calls) }

func newTestCache(minter Minter) *TokenCache {
	return NewTokenCache(minter, NewMemoryTokenStore(), zap.NewNop())
}

func TestTokenConcurrentCallersShareOneMint(t *testing.T) {
	minter := &fakeMinter{
		token: domain.MintedToken{AccessToken: "tok-1"},
		gate:  make(chan struct{}),
	}
	cache := newTestCache(minter)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, err := cache.Token(context.Background(), "u1")
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = token.AccessToken
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(minter.gate)
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if results[i] != "tok-1" {
			t.Fatalf("caller %d: expected tok-1, got %q", i, results[i])
		}
	}
	if got := minter.count(); got != 1 {
		t.Fatalf("expected exactly 1 mint, got %d", got)
	}
}

func TestTokenTreatsNearExpiryAsStale(t *testing.T) {
	now := time.Now()
	minter := &fakeMinter{token: domain.MintedToken{
		AccessToken: "tok-fresh",
		ExpiresAt:   now.Add(time.Hour).UnixMilli(),
	}}
	cache := newTestCache(minter)
	cache.now = func() time.Time { return now }

	// 90s of life remaining sits inside the 2-minute skew margin.
	cache.memory["u1"] = domain.MintedToken{
		AccessToken: "tok-stale",
		ExpiresAt:   now.Add(90 * time.Second).UnixMilli(),
	}

	token, err := cache.Token(context.Background(), "u1")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if token.AccessToken != "tok-fresh" {
		t.Fatalf("expected remint, got %q", token.AccessToken)
	}
	if got := minter.count(); got != 1 {
		t.Fatalf("expected 1 mint, got %d", got)
	}
}

func TestTokenServesFreshEntryWithoutMinting(t *testing.T) {
	now := time.Now()
	minter := &fakeMinter{err: errors.New("must not mint")}
	cache := newTestCache(minter)
	cache.now = func() time.Time { return now }

	cache.memory["u1"] = domain.MintedToken{
		AccessToken: "tok-cached",
		ExpiresAt:   now.Add(200 * time.Second).UnixMilli(),
	}

	token, err := cache.Token(context.Background(), "u1")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if token.AccessToken != "tok-cached" {
		t.Fatalf("expected cached token, got %q", token.AccessToken)
	}
	if got := minter.count(); got != 0 {
		t.Fatalf("expected no mint, got %d", got)
	}
}

func TestTokenPromotesDurableEntry(t *testing.T) {
	now := time.Now()
	store := NewMemoryTokenStore()
	stored := domain.MintedToken{
		AccessToken: "tok-durable",
		ExpiresAt:   now.Add(time.Hour).UnixMilli(),
	}
	if err := store.Set(context.Background(), "u1", stored); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	minter := &fakeMinter{err: errors.New("must not mint")}
	cache := NewTokenCache(minter, store, zap.NewNop())
	cache.now = func() time.Time { return now }

	token, err := cache.Token(context.Background(), "u1")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if token.AccessToken != "tok-durable" {
		t.Fatalf("expected durable token, got %q", token.AccessToken)
	}
	if cached, ok := cache.memory["u1"]; !ok || cached.AccessToken != "tok-durable" {
		t.Fatal("expected durable entry promoted into memory")
	}
}

func TestTokenAbortedCallerLeavesCacheUntouched(t *testing.T) {
	minter := &fakeMinter{
		token:      domain.MintedToken{AccessToken: "tok-late"},
		waitForCtx: true,
	}
	cache := newTestCache(minter)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := cache.Token(ctx, "u1")
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	err := <-done
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, ok := cache.memory["u1"]; ok {
		t.Fatal("expected no memory write after abort")
	}
	if _, found, _ := cache.store.Get(context.Background(), "u1"); found {
		t.Fatal("expected no durable write after abort")
	}
}

func TestEvictClearsBothLayers(t *testing.T) {
	minter := &fakeMinter{token: domain.MintedToken{AccessToken: "tok-1"}}
	cache := newTestCache(minter)

	if _, err := cache.Token(context.Background(), "u1"); err != nil {
		t.Fatalf("token: %v", err)
	}

	cache.Evict(context.Background(), "u1")

	if _, ok := cache.memory["u1"]; ok {
		t.Fatal("expected memory entry evicted")
	}
	if _, found, _ := cache.store.Get(context.Background(), "u1"); found {
		t.Fatal("expected durable entry evicted")
	}
}

func TestTokenIsolatedPerUser(t *testing.T) {
	minter := &fakeMinter{token: domain.MintedToken{AccessToken: "tok-a"}}
	cache := newTestCache(minter)

	if _, err := cache.Token(context.Background(), "alice"); err != nil {
		t.Fatalf("token: %v", err)
	}
	if _, ok := cache.memory["bob"]; ok {
		t.Fatal("expected no entry for other user")
	}
	if _, err := cache.Token(context.Background(), "bob"); err != nil {
		t.Fatalf("token: %v", err)
	}
	if got := minter.count(); got != 2 {
		t.Fatalf("expected one mint per user, got %d", got)
	}
}
