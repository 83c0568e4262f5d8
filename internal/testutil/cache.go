package testutil

import "sync"

// MemCache is an unbounded in-memory Cache.
type MemCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func NewMemCache() *MemCache {
	return &MemCache{entries: map[string][]byte{}}
}

func (c *MemCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *MemCache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = append([]byte(nil), value...)
}

func (c *MemCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
