package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "map-catalog-service/internal/core/ports/output"
)

func TestFreecache_SetGet(t *testing.T) {
	c := NewFreecache(1024*1024, time.Minute)

	_, ok := c.Get("cursor|recency|10||1")
	assert.False(t, ok)

	c.Set("cursor|recency|10||1", []byte("token"))
	got, ok := c.Get("cursor|recency|10||1")
	require.True(t, ok)
	assert.Equal(t, []byte("token"), got)
	assert.Equal(t, int64(1), c.(*Freecache).EntryCount())
}

func TestFreecache_Disabled(t *testing.T) {
	c := NewFreecache(0, time.Minute)
	_, ok := c.(ports.NoopCache)
	assert.True(t, ok)

	c.Set("k", []byte("v"))
	_, hit := c.Get("k")
	assert.False(t, hit)
}
