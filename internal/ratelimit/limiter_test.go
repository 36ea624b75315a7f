package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swaad-chat/internal/common/logger"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newMemory(c *clock) Limiter {
	l := NewMemoryLimiter(Limits{})
	l.now = c.now
	l.global.lastRefill = c.t
	return l
}

func newRedis(t *testing.T, c *clock) Limiter {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	l := NewRedisLimiter(client, Limits{}, "rl:", logger.NewTestLogger(t))
	l.now = c.now
	return l
}

func limiterCases(t *testing.T) map[string]func(*clock) Limiter {
	return map[string]func(*clock) Limiter{
		"memory": newMemory,
		"redis":  func(c *clock) Limiter { return newRedis(t, c) },
	}
}

func TestLimiter_SessionWindow(t *testing.T) {
	for name, build := range limiterCases(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := &clock{t: time.UnixMilli(60_000 * 1000)}
			l := build(c)

			for i := 0; i < DefaultSessionRequests; i++ {
				d, err := l.Allow(ctx, "s1")
				require.NoError(t, err)
				require.True(t, d.Allowed, "request %d", i+1)
			}

			c.t = c.t.Add(15 * time.Second)
			d, err := l.Allow(ctx, "s1")
			require.NoError(t, err)
			assert.False(t, d.Allowed)
			assert.Equal(t, ScopeSession, d.Scope)
			assert.Equal(t, 45*time.Second, d.RetryAfter)

			other, err := l.Allow(ctx, "s2")
			require.NoError(t, err)
			assert.True(t, other.Allowed)

			c.t = c.t.Add(time.Minute)
			again, err := l.Allow(ctx, "s1")
			require.NoError(t, err)
			assert.True(t, again.Allowed)
		})
	}
}

func TestLimiter_GlobalWindow(t *testing.T) {
	for name, build := range limiterCases(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := &clock{t: time.UnixMilli(60_000 * 2000)}
			l := build(c)

			for i := 0; i < DefaultGlobalRequests; i++ {
				d, err := l.Allow(ctx, fmt.Sprintf("session-%d", i))
				require.NoError(t, err)
				require.True(t, d.Allowed)
			}

			d, err := l.Allow(ctx, "fresh")
			require.NoError(t, err)
			assert.False(t, d.Allowed)
			assert.Equal(t, ScopeGlobal, d.Scope)
			assert.Equal(t, time.Minute, d.RetryAfter)
		})
	}
}

func TestLimiter_RejectionDoesNotConsumeGlobal(t *testing.T) {
	for name, build := range limiterCases(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := &clock{t: time.UnixMilli(60_000 * 3000)}
			l := build(c)

			for i := 0; i < DefaultSessionRequests+15; i++ {
				_, err := l.Allow(ctx, "greedy")
				require.NoError(t, err)
			}

			allowed := 0
			for i := 0; i < DefaultGlobalRequests; i++ {
				d, err := l.Allow(ctx, fmt.Sprintf("other-%d", i))
				require.NoError(t, err)
				if d.Allowed {
					allowed++
				}
			}
			assert.Equal(t, DefaultGlobalRequests-DefaultSessionRequests, allowed)
		})
	}
}

func TestMemoryLimiter_Sweep(t *testing.T) {
	c := &clock{t: time.Unix(1_000_000, 0)}
	l := NewMemoryLimiter(Limits{})
	l.now = c.now

	_, _ = l.Allow(context.Background(), "idle")
	c.t = c.t.Add(11 * time.Minute)
	_, _ = l.Allow(context.Background(), "active")

	assert.Equal(t, 1, l.Sweep())
	assert.Len(t, l.sessions, 1)
}

func TestUnlimited(t *testing.T) {
	d, err := Unlimited{}.Allow(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}
