package memory

import (
	"sync"
	"time"

	"github.com/boxincode/sitekit/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.Cache = (*Cache)(nil)

// entry is one cached value with its expiry deadline.
type entry struct {
	value     []byte
	expiresAt time.Time
}

// Cache is an in-process TTL cache. Expired entries are dropped lazily
// on read and swept periodically once Start is called.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		stopCh:  make(chan struct{}),
	}
}

// Get retrieves a cached value. The second return is false when the key
// is absent or expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a Set may have raced in.
		if current, ok := c.entries[key]; ok && time.Now().After(current.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores a value with the given TTL. Non-positive TTLs are ignored.
func (c *Cache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	count := 0
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			count++
		}
	}
	return count
}

// Start launches a background sweep that evicts expired entries every
// interval. Call Stop to end it.
func (c *Cache) Start(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.sweep()
			case <-c.stopCh:
				return
			}
		}
	}()
}

// Stop ends the background sweep.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

func (c *Cache) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
