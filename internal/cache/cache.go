// Package cache provides a small TTL cache used to debounce analytics reads:
// the dashboard and timeseries endpoints are cheap to serve stale for a few
// seconds, and the store refreshes them out of band after every mutation.
package cache

import (
	"sync"
	"time"
)

// entry stores a cached value and its absolute expiration timestamp.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL is a mutex-guarded map cache with a single time-to-live for all
// entries. Expired entries are overwritten on the next Put; there is no
// background janitor.
type TTL[K comparable, V any] struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[K]entry[V]
}

// now is an indirection for test stubbing.
var now = time.Now

// NewTTL constructs a cache whose entries live for ttl. A non-positive ttl
// disables caching entirely (every Get misses).
func NewTTL[K comparable, V any](ttl time.Duration) *TTL[K, V] {
	return &TTL[K, V]{
		ttl:   ttl,
		items: make(map[K]entry[V]),
	}
}

// Get returns the cached value and whether it is present and fresh.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V
	e, ok := c.items[key]
	if !ok || now().After(e.expiresAt) {
		return zero, false
	}
	return e.value, true
}

// Put stores the value under key for the cache's TTL.
func (c *TTL[K, V]) Put(key K, value V) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry[V]{value: value, expiresAt: now().Add(c.ttl)}
}

// Invalidate drops a single key.
func (c *TTL[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear drops every entry.
func (c *TTL[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]entry[V])
}
