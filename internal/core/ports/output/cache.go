package ports

// Cache is a best-effort byte cache. Misses are never errors.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

type NoopCache struct{}

func (NoopCache) Get(string) ([]byte, bool) { return nil, false }
func (NoopCache) Set(string, []byte) {}
