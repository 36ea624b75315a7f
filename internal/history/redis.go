package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"swaad-chat/internal/common/errors"
	"swaad-chat/internal/common/logger"
	"swaad-chat/internal/models"
)

// RedisStore keeps each session as a list: RPUSH new messages, LTRIM to
// the window and refresh the TTL in one transaction.
type RedisStore struct {
	client    redis.Cmdable
	keyPrefix string
	max       int
	ttl       time.Duration
	logger    logger.Logger
}

func NewRedisStore(client redis.Cmdable, keyPrefix string, maxMessages int, ttl time.Duration, log logger.Logger) *RedisStore {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		max:       maxMessages,
		ttl:       ttl,
		logger:    log.WithFields(map[string]interface{}{"component": "history-redis"}),
	}
}

func (s *RedisStore) key(sessionID string) string {
	return s.keyPrefix + sessionID
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) ([]models.TranscriptMessage, error) {
	raw, err := s.client.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, errors.NewHistoryStoreFailedError("get", err)
	}

	out := make([]models.TranscriptMessage, 0, len(raw))
	for _, entry := range raw {
		var msg models.TranscriptMessage
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			s.logger.Warn("skipping corrupt history entry", map[string]interface{}{
				"sessionId": sessionID,
				"error":     err,
			})
			continue
		}
		out = append(out, msg)
	}
	return trimWindow(out, s.max), nil
}

func (s *RedisStore) Append(ctx context.Context, sessionID string, msgs ...models.TranscriptMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(msgs))
	for _, msg := range msgs {
		encoded, err := json.Marshal(msg)
		if err != nil {
			return errors.NewHistoryStoreFailedError("encode", err)
		}
		values = append(values, string(encoded))
	}

	key := s.key(sessionID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		pipe.LTrim(ctx, key, int64(-s.max), -1)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return errors.NewHistoryStoreFailedError("append", err)
	}
	return nil
}

func (s *RedisStore) Evict(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return errors.NewHistoryStoreFailedError("evict", err)
	}
	return nil
}
