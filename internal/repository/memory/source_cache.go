package memory

import (
	"context"
	"time"

	"concierge-be/pkg/source"

	"github.com/patrickmn/go-cache"
)

// SourceCache keeps ingested sources in process memory.
type SourceCache struct {
	cache *cache.Cache
}

func NewSourceCache(ttl time.Duration) *SourceCache {
	return &SourceCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *SourceCache) Get(_ context.Context, url string) (source.Ingested, bool) {
	if x, found := c.cache.Get(url); found {
		return x.(source.Ingested), true
	}
	return source.Ingested{}, false
}

func (c *SourceCache) Set(_ context.Context, item source.Ingested) {
	c.cache.Set(item.URL, item, cache.DefaultExpiration)
}
