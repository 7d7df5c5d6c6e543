package rank

import (
	"sync"
	"time"
)

// Cache is an explicit TTL cache for scan results. Entries are checked
// against their deadline on read; Invalidate drops everything (the UI
// refresh action).
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	result  *Result
	expires time.Time
}

// NewCache creates a cache with the given TTL
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns a live entry, or nil when missing or expired
func (c *Cache) Get(key string) *Result {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expires) {
		return nil
	}

	return entry.result
}

// Set stores a result under the key with a fresh deadline
func (c *Cache) Set(key string, result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		result:  result,
		expires: c.now().Add(c.ttl),
	}
}

// Invalidate drops all entries
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
}
