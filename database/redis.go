package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses redisURL and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisStore keeps checkout idempotency keys and message dedup claims.
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore creates a new RedisStore.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func idemKey(key string) string {
	return "idem:order:create:" + key
}

func dedupKey(scope, id string) string {
	return fmt.Sprintf("dedup:%s:%s", scope, id)
}

// Get returns the value stored under an idempotency key.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, idemKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores value under an idempotency key for ttl.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, idemKey(key), value, ttl).Err()
}

// Claim atomically marks id as seen in scope. It reports false when another
// delivery claimed it first.
func (s *RedisStore) Claim(ctx context.Context, scope, id string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, dedupKey(scope, id), time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

// Release drops a claim so that the message can be processed again.
func (s *RedisStore) Release(ctx context.Context, scope, id string) error {
	return s.client.Del(ctx, dedupKey(scope, id)).Err()
}
