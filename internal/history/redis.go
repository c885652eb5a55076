package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/salesimport/internal/core"
)

const keyPrefix = "import:result:"

// RedisStore keeps results as JSON strings that expire after ttl.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Connect parses a redis:// URL and checks the server answers PING.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func resultKey(importID string) string {
	return keyPrefix + importID
}

func (s *RedisStore) Save(ctx context.Context, res *core.ImportResult) error {
	if res == nil || res.ImportID == "" {
		return errors.New("save import result: missing import id")
	}
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode import result: %w", err)
	}
	if err := s.client.Set(ctx, resultKey(res.ImportID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save import result %s: %w", res.ImportID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, importID string) (*core.ImportResult, error) {
	val, err := s.client.Get(ctx, resultKey(importID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load import result %s: %w", importID, err)
	}

	var res core.ImportResult
	if err := json.Unmarshal(val, &res); err != nil {
		return nil, fmt.Errorf("decode import result %s: %w", importID, err)
	}
	return &res, nil
}
