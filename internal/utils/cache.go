package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem pairs a cached value with its expiry.
type CacheItem struct {
	Data      any
	ExpiresAt time.Time
}

// Cache is a size bounded in-process cache with per entry TTL.
type Cache struct {
	lruCache *lru.Cache[string, CacheItem]
	now      func() time.Time
}

func NewCache(size int) (*Cache, error) {
	l, err := lru.New[string, CacheItem](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lruCache: l, now: time.Now}, nil
}

// Set stores data under key for ttl.
func (c *Cache) Set(key string, data any, ttl time.Duration) {
	c.lruCache.Add(key, CacheItem{
		Data:      data,
		ExpiresAt: c.now().Add(ttl),
	})
}

// Get returns nil when the key is missing or expired.
func (c *Cache) Get(key string) any {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}

	if c.now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return nil
	}

	return val.Data
}

// Delete drops key.
func (c *Cache) Delete(key string) {
	c.lruCache.Remove(key)
}
