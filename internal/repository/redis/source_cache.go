package redis

import (
	"context"
	"encoding/json"
	"time"

	"concierge-be/internal/pkg/logger"
	"concierge-be/pkg/source"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "concierge:source:"

// SourceCache shares ingested sources between server instances.
type SourceCache struct {
	rdb    *goredis.Client
	ttl    time.Duration
	logger logger.ILogger
}

func NewSourceCache(rdb *goredis.Client, ttl time.Duration, log logger.ILogger) *SourceCache {
	return &SourceCache{rdb: rdb, ttl: ttl, logger: log}
}

func (c *SourceCache) Get(ctx context.Context, url string) (source.Ingested, bool) {
	raw, err := c.rdb.Get(ctx, keyPrefix+url).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.logger.Warn("SourceCache", "Redis get failed", map[string]interface{}{"url": url, "error": err.Error()})
		}
		return source.Ingested{}, false
	}

	var item source.Ingested
	if err := json.Unmarshal(raw, &item); err != nil {
		return source.Ingested{}, false
	}
	return item, true
}

func (c *SourceCache) Set(ctx context.Context, item source.Ingested) {
	raw, err := json.Marshal(item)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, keyPrefix+item.URL, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("SourceCache", "Redis set failed", map[string]interface{}{"url": item.URL, "error": err.Error()})
	}
}
