package cache

import (
	"time"
	"unsafe"

	"github.com/coocood/freecache"

	ports "map-catalog-service/internal/core/ports/output"
)

// Freecache is a size-bounded Cache with a fixed TTL per entry. Entries are
// evicted LRU-style once the segment is full.
type Freecache struct {
	cache *freecache.Cache
	ttl   int
}

// NewFreecache returns a Cache of sizeBytes. A non-positive size disables
// caching.
func NewFreecache(sizeBytes int, ttl time.Duration) ports.Cache {
	if sizeBytes <= 0 {
		return ports.NoopCache{}
	}
	return &Freecache{
		cache: freecache.NewCache(sizeBytes),
		ttl:   max(int(ttl.Seconds()), 1),
	}
}

// keyBytes converts without copying; freecache copies keys internally and
// never writes to them.
func keyBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *Freecache) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get(keyBytes(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *Freecache) Set(key string, value []byte) {
	_ = c.cache.Set(keyBytes(key), value, c.ttl)
}

func (c *Freecache) EntryCount() int64 {
	return c.cache.EntryCount()
}
