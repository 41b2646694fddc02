package auth

import (
	"sync"
	"time"
)

// revocationCache remembers logged-out token IDs until their tokens would
// have expired anyway. Expired entries are swept lazily on lookup.
type revocationCache struct {
	mu    sync.Mutex
	items map[string]time.Time
}

func newRevocationCache() *revocationCache {
	return &revocationCache{items: make(map[string]time.Time)}
}

func (c *revocationCache) Add(id string, until time.Time) {
	if id == "" {
		return
	}
	c.mu.Lock()
	c.items[id] = until
	c.mu.Unlock()
}

func (c *revocationCache) Contains(id string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	until, ok := c.items[id]
	if !ok {
		return false
	}
	if now.After(until) {
		delete(c.items, id)
		return false
	}
	return true
}
