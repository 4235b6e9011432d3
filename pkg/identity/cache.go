package identity

import (
	"fmt"

	"github.com/dgraph-io/ristretto"
)

// Cache memoizes content digests. It is a pure performance
// optimization: a hit and a miss produce the identical Hash, so
// dropping the cache never changes an observable result. The cache is
// safe for concurrent use.
type Cache struct {
	c *ristretto.Cache
}

// NewCache creates a digest cache bounded to roughly maxBytes of keyed
// content.
func NewCache(maxBytes int64) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxBytes / 64,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create digest cache: %w", err)
	}
	return &Cache{c: c}, nil
}

// HashBytes returns the digest of data, recomputing it only on a cache
// miss.
func (c *Cache) HashBytes(data []byte) Hash {
	key := string(data)
	if v, ok := c.c.Get(key); ok {
		if h, ok := v.(Hash); ok {
			return h
		}
	}

	h := HashBytes(data)
	c.c.Set(key, h, int64(len(data)))
	return h
}

// Close releases the cache's background resources.
func (c *Cache) Close() {
	c.c.Close()
}
