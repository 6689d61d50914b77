// Package cache holds the in-process cache for public listing responses.
//
// The dataset changes only through admin writes, so the cache is
// invalidated wholesale after any mutation or after an import run with a
// non-zero success count, rather than tracking per-key dependencies.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value   any
	expires time.Time
}

// Listing is a TTL cache keyed by normalized query string.
type Listing struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry

	// now is swappable for tests.
	now func() time.Time
}

// NewListing creates a listing cache with the given entry TTL.
func NewListing(ttl time.Duration) *Listing {
	return &Listing{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached value for key if present and fresh.
func (c *Listing) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expires) {
		return nil, false
	}
	return e.value, true
}

// Set stores a value under key with the cache's TTL.
func (c *Listing) Set(key string, value any) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops every cached entry.
func (c *Listing) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len reports the number of entries held, fresh or stale.
func (c *Listing) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
