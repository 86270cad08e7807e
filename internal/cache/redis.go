package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const keyPrefix = "shortsdl:info:"

// Redis is a Cache backed by a Redis server.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: redis get: %w", err)
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, keyPrefix+key, val, ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Open returns a Redis cache when addr is set and reachable, and the in-memory
// cache otherwise. An unreachable Redis is logged, not fatal.
func Open(ctx context.Context, addr, password string, db int) Cache {
	if addr == "" {
		slog.Info("cache: REDIS_ADDR not set, using in-memory metadata cache")
		return NewMemory()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		slog.Warn("cache: redis not available, using in-memory metadata cache", "addr", addr, "error", err)
		_ = client.Close()
		return NewMemory()
	}

	slog.Info("cache: redis connected", "addr", addr, "db", db)
	return NewRedis(client)
}
