package ratelimit

import (
	"context"
	"sync"
	"time"
)

const staleAfter = 10 * time.Minute

type bucket struct {
	tokens     int
	lastRefill time.Time
}

func (b *bucket) refill(now time.Time, max int, window time.Duration) {
	if now.Sub(b.lastRefill) >= window {
		b.tokens = max
		b.lastRefill = now
	}
}

func (b *bucket) retryAfter(now time.Time, window time.Duration) time.Duration {
	return window - now.Sub(b.lastRefill)
}

// MemoryLimiter refills each bucket to full once its window has elapsed.
type MemoryLimiter struct {
	mu       sync.Mutex
	limits   Limits
	global   *bucket
	sessions map[string]*bucket
	now      func() time.Time
}

func NewMemoryLimiter(limits Limits) *MemoryLimiter {
	limits = limits.withDefaults()
	now := time.Now
	return &MemoryLimiter{
		limits:   limits,
		global:   &bucket{tokens: limits.GlobalRequests, lastRefill: now()},
		sessions: make(map[string]*bucket),
		now:      now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, sessionID string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	l.global.refill(now, l.limits.GlobalRequests, l.limits.Window)
	if l.global.tokens <= 0 {
		return Decision{Scope: ScopeGlobal, RetryAfter: l.global.retryAfter(now, l.limits.Window)}, nil
	}

	session, ok := l.sessions[sessionID]
	if !ok {
		session = &bucket{tokens: l.limits.SessionRequests, lastRefill: now}
		l.sessions[sessionID] = session
	}
	session.refill(now, l.limits.SessionRequests, l.limits.Window)
	if session.tokens <= 0 {
		return Decision{Scope: ScopeSession, RetryAfter: session.retryAfter(now, l.limits.Window)}, nil
	}

	l.global.tokens--
	session.tokens--
	return Decision{Allowed: true}, nil
}

// Sweep forgets sessions idle for longer than ten minutes.
func (l *MemoryLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for id, b := range l.sessions {
		if now.Sub(b.lastRefill) > staleAfter {
			delete(l.sessions, id)
			removed++
		}
	}
	return removed
}

func (l *MemoryLimiter) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.Sweep()
		}
	}
}
