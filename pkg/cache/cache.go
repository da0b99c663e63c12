package cache

import (
	"context"
	"sync"
	"time"

	"go-network-backend/pkg/metrics"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a computed value is served before it is recomputed.
// Writes do not invalidate entries; readers may see data up to one TTL old.
const DefaultTTL = 5 * time.Minute

// loadTimeout bounds a shared load once it no longer follows any caller's context.
const loadTimeout = 30 * time.Second

// Clock reports the current time. Tests inject a fake to control expiry.
type Clock func() time.Time

// Loader computes a value on a miss.
type Loader[T any] func(ctx context.Context) (T, error)

// Cache is a read-through cache keyed by string.
type Cache[T any] interface {
	GetOrCompute(ctx context.Context, key string, load Loader[T]) (T, error)
}

type entry[T any] struct {
	value   T
	expires time.Time
}

// TTL is an in-process Cache. Concurrent misses for one key share a single load.
type TTL[T any] struct {
	name  string
	ttl   time.Duration
	clock Clock

	mu      sync.RWMutex
	entries map[string]entry[T]
	group   singleflight.Group
}

func NewTTL[T any](name string, ttl time.Duration, clock Clock) *TTL[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return &TTL[T]{
		name:    name,
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]entry[T]),
	}
}

func (c *TTL[T]) GetOrCompute(ctx context.Context, key string, load Loader[T]) (T, error) {
	if v, ok := c.lookup(key); ok {
		metrics.CacheLookups.WithLabelValues(c.name, "hit").Inc()
		return v, nil
	}
	metrics.CacheLookups.WithLabelValues(c.name, "miss").Inc()

	res, err := share(ctx, &c.group, key, func(loadCtx context.Context) (any, error) {
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		v, err := load(loadCtx)
		if err != nil {
			return v, err
		}
		c.mu.Lock()
		c.entries[key] = entry[T]{value: v, expires: c.clock().Add(c.ttl)}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

// share runs fn once for all concurrent callers of key. fn gets a context detached
// from the first caller, so that caller going away does not fail the others; each
// caller still stops waiting when its own ctx is done.
func share(ctx context.Context, g *singleflight.Group, key string, fn func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := g.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(detached, loadTimeout)
		defer cancel()
		return fn(loadCtx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.Val, r.Err
	}
}

func (c *TTL[T]) lookup(key string) (T, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.clock().Before(e.expires) {
		var zero T
		return zero, false
	}
	return e.value, true
}
