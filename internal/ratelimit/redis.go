package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"swaad-chat/internal/common/logger"
)

// allowScript checks both windows before consuming from either.
// Returns {allowed, scope} where scope 1 = global, 2 = session.
var allowScript = redis.NewScript(`
local g = tonumber(redis.call('GET', KEYS[1]) or '0')
if g >= tonumber(ARGV[1]) then
  return {0, 1}
end
local s = tonumber(redis.call('GET', KEYS[2]) or '0')
if s >= tonumber(ARGV[2]) then
  return {0, 2}
end
redis.call('INCR', KEYS[1])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
redis.call('INCR', KEYS[2])
redis.call('PEXPIRE', KEYS[2], ARGV[3])
return {1, 0}
`)

// RedisLimiter shares the windows across replicas. Windows are aligned to
// multiples of Window since the epoch.
type RedisLimiter struct {
	client    redis.Scripter
	limits    Limits
	keyPrefix string
	now       func() time.Time
	logger    logger.Logger
}

func NewRedisLimiter(client redis.Scripter, limits Limits, keyPrefix string, log logger.Logger) *RedisLimiter {
	if keyPrefix == "" {
		keyPrefix = "ratelimit:"
	}
	return &RedisLimiter{
		client:    client,
		limits:    limits.withDefaults(),
		keyPrefix: keyPrefix,
		now:       time.Now,
		logger:    log.WithFields(map[string]interface{}{"component": "ratelimit-redis"}),
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, sessionID string) (Decision, error) {
	now := l.now()
	windowMs := l.limits.Window.Milliseconds()
	start := now.UnixMilli() / windowMs * windowMs
	suffix := strconv.FormatInt(start, 10)

	keys := []string{
		l.keyPrefix + "global:" + suffix,
		l.keyPrefix + "session:" + sessionID + ":" + suffix,
	}
	res, err := allowScript.Run(ctx, l.client, keys,
		l.limits.GlobalRequests, l.limits.SessionRequests, windowMs).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}

	if res[0] == 1 {
		return Decision{Allowed: true}, nil
	}

	scope := ScopeSession
	if res[1] == 1 {
		scope = ScopeGlobal
	}
	retry := time.Duration(start+windowMs-now.UnixMilli()) * time.Millisecond
	l.logger.Debug("rate limited", map[string]interface{}{
		"scope":        scope,
		"retryAfterMs": retry.Milliseconds(),
	})
	return Decision{Scope: scope, RetryAfter: retry}, nil
}
