package emotionlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "emotion_logs:"

// RedisStore keeps each user's entries in a sorted set scored by timestamp.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) Store(ctx context.Context, e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return s.client.ZAdd(ctx, s.key(e.UserID), redis.Z{
		Score:  float64(e.Timestamp.UnixMilli()),
		Member: b,
	}).Err()
}

func (s *RedisStore) List(ctx context.Context, userID string, limit int) ([]Entry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	members, err := s.client.ZRevRange(ctx, s.key(userID), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(members))
	for _, m := range members {
		var e Entry
		if err := json.Unmarshal([]byte(m), &e); err != nil {
			return nil, fmt.Errorf("decode entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// Close is a no-op; the client is shared and closed by its owner.
func (s *RedisStore) Close() error {
	return nil
}

func (s *RedisStore) key(userID string) string {
	return s.prefix + userID
}
