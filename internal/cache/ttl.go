// Package cache provides the TTL cache shared by the tenant registry and
// resolver. Entries are valid for a fixed duration and treated as misses
// afterwards; there is no background refresh, expired entries are recomputed
// synchronously by the caller.
package cache

import (
	"strings"
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	written time.Time
}

// TTL is a concurrency-safe keyed cache with a fixed time-to-live. The clock
// is injectable so tests can force expiry without sleeping.
type TTL[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a TTL cache.
type Option[V any] func(*TTL[V])

// WithClock replaces the wall clock, for tests.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *TTL[V]) {
		c.now = now
	}
}

// NewTTL creates a cache whose entries expire ttl after being written.
func NewTTL[V any](ttl time.Duration, opts ...Option[V]) *TTL[V] {
	c := &TTL[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key. An entry older than the TTL is a
// miss; it stays in the map until overwritten so Get never blocks writers
// longer than a map read.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().Sub(e.written) >= c.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with a fresh write timestamp.
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, written: c.now()}
	c.mu.Unlock()
}

// Delete removes a single key.
func (c *TTL[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidatePrefix removes every key with the given prefix, leaving entries
// for unrelated keys in place.
func (c *TTL[V]) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// Clear removes all entries.
func (c *TTL[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()
}

// Len reports the number of entries currently held, expired or not.
func (c *TTL[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
