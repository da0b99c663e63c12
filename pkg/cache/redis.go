package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-network-backend/pkg/logger"
	"go-network-backend/pkg/metrics"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Redis stores JSON-encoded values in Redis with a TTL, so several API processes
// share one copy. Redis errors degrade to calling the loader directly.
type Redis[T any] struct {
	name   string
	prefix string
	ttl    time.Duration
	client *goredis.Client
	group  singleflight.Group
}

func NewRedis[T any](name string, client *goredis.Client, ttl time.Duration) *Redis[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis[T]{
		name:   name,
		prefix: "cache:" + name + ":",
		ttl:    ttl,
		client: client,
	}
}

func (c *Redis[T]) GetOrCompute(ctx context.Context, key string, load Loader[T]) (T, error) {
	var zero T
	redisKey := c.prefix + key

	raw, err := c.client.Get(ctx, redisKey).Bytes()
	if err == nil {
		var v T
		if jsonErr := json.Unmarshal(raw, &v); jsonErr == nil {
			metrics.CacheLookups.WithLabelValues(c.name, "hit").Inc()
			return v, nil
		}
	} else if !errors.Is(err, goredis.Nil) {
		logger.Log.Warn("cache read failed", zap.String("cache", c.name), zap.Error(err))
	}
	metrics.CacheLookups.WithLabelValues(c.name, "miss").Inc()

	res, err := share(ctx, &c.group, key, func(loadCtx context.Context) (any, error) {
		v, err := load(loadCtx)
		if err != nil {
			return v, err
		}
		if data, err := json.Marshal(v); err == nil {
			if setErr := c.client.Set(loadCtx, redisKey, data, c.ttl).Err(); setErr != nil {
				logger.Log.Warn("cache write failed", zap.String("cache", c.name), zap.Error(setErr))
			}
		}
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	return res.(T), nil
}
