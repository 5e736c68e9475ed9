package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ResponseCache is an explicit read-through cache for list endpoints: every
// entry has a TTL and a key the writer side invalidates on mutation. The
// singleflight group collapses concurrent loads of the same key.
type ResponseCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

func NewResponseCache(rdb *redis.Client, ttl time.Duration, logger ...*zap.Logger) *ResponseCache {
	l := zap.L().Named("shared.cache")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("shared.cache")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ResponseCache{rdb: rdb, ttl: ttl, logger: l}
}

// GetOrLoad unmarshals the cached value for key into dest, or runs load,
// stores its result and unmarshals that. Cache failures degrade to a direct
// load; they never fail the request.
func (c *ResponseCache) GetOrLoad(
	ctx context.Context,
	key string,
	dest any,
	load func(ctx context.Context) (any, error),
) error {
	if c.rdb != nil {
		cached, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(cached, dest)
		}
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	raw, err, _ := c.group.Do(key, func() (any, error) {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if c.rdb != nil {
			if err := c.rdb.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
				c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
		return encoded, nil
	})
	if err != nil {
		return err
	}

	return json.Unmarshal(raw.([]byte), dest)
}

// Invalidate drops the given keys; called by services after every mutation.
func (c *ResponseCache) Invalidate(ctx context.Context, keys ...string) {
	if c.rdb == nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
