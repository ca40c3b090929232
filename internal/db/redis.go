package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisBlobs keeps the same key-value contract as SQLiteBlobs on a redis
// server, for sharing one pantry between several machines.
type RedisBlobs struct {
	client *redis.Client
	prefix string
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

func OpenRedis(ctx context.Context, opts RedisOptions) (*RedisBlobs, error) {
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "pantry:"
	}
	return &RedisBlobs{client: client, prefix: prefix}, nil
}

func (r *RedisBlobs) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get redis blob %q: %w", key, err)
	}
	return value, true, nil
}

func (r *RedisBlobs) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("put redis blob %q: %w", key, err)
	}
	return nil
}

func (r *RedisBlobs) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("delete redis blob %q: %w", key, err)
	}
	return nil
}

func (r *RedisBlobs) Close() error {
	return r.client.Close()
}
