package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "paperflow:transcript:"

// RedisStore persists transcripts as Redis lists, one list per session.
// Suitable when multiple workers share transcript state.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redisstore: ping: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Append implements TranscriptStore.
func (s *RedisStore) Append(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("redisstore: marshal: %w", err)
	}
	if err := s.client.RPush(ctx, redisKeyPrefix+entry.SessionID, payload).Err(); err != nil {
		return fmt.Errorf("redisstore: rpush: %w", err)
	}
	return nil
}

// Load implements TranscriptStore.
func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]Entry, error) {
	raw, err := s.client.LRange(ctx, redisKeyPrefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: lrange: %w", err)
	}
	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("redisstore: parse entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Close implements TranscriptStore.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
