package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-network-backend/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestTTLCache(t *testing.T) {
	ctx := context.Background()

	t.Run("Should serve cached value until the TTL elapses", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(0, 0)}
		c := cache.NewTTL[int]("test", 5*time.Minute, clock.Now)

		calls := 0
		load := func(context.Context) (int, error) {
			calls++
			return calls, nil
		}

		v, err := c.GetOrCompute(ctx, "k", load)
		require.NoError(t, err)
		assert.Equal(t, 1, v)

		clock.Advance(5*time.Minute - time.Second)
		v, _ = c.GetOrCompute(ctx, "k", load)
		assert.Equal(t, 1, v, "stale value is served inside the window")

		clock.Advance(time.Second)
		v, _ = c.GetOrCompute(ctx, "k", load)
		assert.Equal(t, 2, v)
	})

	t.Run("Should not cache errors", func(t *testing.T) {
		c := cache.NewTTL[string]("test", time.Minute, nil)
		_, err := c.GetOrCompute(ctx, "k", func(context.Context) (string, error) {
			return "", errors.New("db down")
		})
		assert.Error(t, err)

		v, err := c.GetOrCompute(ctx, "k", func(context.Context) (string, error) {
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
	})

	t.Run("Should collapse concurrent misses", func(t *testing.T) {
		c := cache.NewTTL[int]("test", time.Minute, nil)
		var calls atomic.Int32
		release := make(chan struct{})

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = c.GetOrCompute(ctx, "k", func(context.Context) (int, error) {
					calls.Add(1)
					<-release
					return 42, nil
				})
			}()
		}
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.LessOrEqual(t, calls.Load(), int32(2))
	})

	t.Run("Should not hand one caller's cancellation to the others", func(t *testing.T) {
		c := cache.NewTTL[int]("test", time.Minute, nil)
		started := make(chan struct{})
		release := make(chan struct{})
		load := func(loadCtx context.Context) (int, error) {
			close(started)
			<-release
			if err := loadCtx.Err(); err != nil {
				return 0, err
			}
			return 7, nil
		}

		firstCtx, cancel := context.WithCancel(ctx)
		firstErr := make(chan error, 1)
		go func() {
			_, err := c.GetOrCompute(firstCtx, "k", load)
			firstErr <- err
		}()
		<-started

		type result struct {
			v   int
			err error
		}
		second := make(chan result, 1)
		go func() {
			v, err := c.GetOrCompute(ctx, "k", func(context.Context) (int, error) {
				return 0, errors.New("second loader should have joined the first")
			})
			second <- result{v, err}
		}()
		time.Sleep(50 * time.Millisecond)

		cancel()
		assert.ErrorIs(t, <-firstErr, context.Canceled)

		close(release)
		got := <-second
		require.NoError(t, got.err)
		assert.Equal(t, 7, got.v)

		v, err := c.GetOrCompute(ctx, "k", func(context.Context) (int, error) { return 0, errors.New("cached") })
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})
}
