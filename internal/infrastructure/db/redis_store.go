package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisStore implements KVStore on a Redis server
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a store on a new Redis client
func NewRedisStore(opt *redis.Options, prefix string) *RedisStore {
	return &RedisStore{client: redis.NewClient(opt), prefix: prefix}
}

// Ping checks connectivity
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Get returns the value stored under key
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	return val, nil
}

// Set stores value under key without expiry; staleness is decided by the reader
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	return nil
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
