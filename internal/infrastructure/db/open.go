package db

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// Options selects and configures the storage backend
type Options struct {
	Driver        string // "badger" or "redis"
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Prefix        string
}

// Open returns the configured KVStore
func Open(ctx context.Context, opts Options) (KVStore, error) {
	switch opts.Driver {
	case "", "badger":
		return OpenBadgerStore(opts.Path, opts.Prefix)
	case "redis":
		store := NewRedisStore(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		}, opts.Prefix)
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.RedisAddr, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", opts.Driver)
	}
}
