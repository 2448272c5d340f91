package server

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// eventsCache is a short-TTL cache of proxied event listings keyed by
// uid+query window. Owned by the server instance, not a package singleton,
// so tests get isolation for free.
type eventsCache struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]eventsCacheEntry
	now   func() time.Time
}

type eventsCacheEntry struct {
	expiresAt time.Time
	payload   json.RawMessage
}

func newEventsCache(ttl time.Duration) *eventsCache {
	return &eventsCache{
		ttl:   ttl,
		items: make(map[string]eventsCacheEntry),
		now:   time.Now,
	}
}

func (c *eventsCache) Get(key string) (json.RawMessage, bool) {
	if c == nil || key == "" {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.payload, true
}

func (c *eventsCache) Set(key string, payload json.RawMessage) {
	if c == nil || key == "" || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.items[key] = eventsCacheEntry{
		expiresAt: c.now().Add(c.ttl),
		payload:   payload,
	}
	c.mu.Unlock()
}

// InvalidatePrefix drops every entry whose key starts with prefix. Used after
// a write so the next listing reflects it.
func (c *eventsCache) InvalidatePrefix(prefix string) {
	if c == nil || prefix == "" {
		return
	}
	c.mu.Lock()
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	c.mu.Unlock()
}
