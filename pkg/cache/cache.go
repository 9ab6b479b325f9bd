package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cacher defines the caching interface.
type Cacher interface {
	GetCache(ctx context.Context, key string) ([]byte, bool)
	SetCache(ctx context.Context, key string, val []byte) error
}

// LRUCache implements Cacher with a size-bounded in-memory store whose
// entries expire after a TTL.
type LRUCache struct {
	lru *expirable.LRU[string, []byte]
}

// NewLRU creates a cache holding up to size entries. A ttl of zero
// disables expiry.
func NewLRU(size int, ttl time.Duration) *LRUCache {
	return &LRUCache{
		lru: expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

func (c *LRUCache) GetCache(_ context.Context, key string) ([]byte, bool) {
	return c.lru.Get(key)
}

func (c *LRUCache) SetCache(_ context.Context, key string, val []byte) error {
	c.lru.Add(key, val)
	return nil
}
