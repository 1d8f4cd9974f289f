package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisPool stores entries in redis, namespaced by prefix.
type RedisPool struct {
	prefix string
	client *redis.Client
}

// RedisOptions configures NewRedisPool.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisPool creates a pool backed by a single redis server. No connection is
// made until the first command.
func NewRedisPool(opts RedisOptions) *RedisPool {
	return &RedisPool{
		prefix: opts.Prefix,
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
	}
}

func (p *RedisPool) key(k string) string {
	return p.prefix + k
}

func (p *RedisPool) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := p.client.Get(ctx, p.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return val, true, nil
}

func (p *RedisPool) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := p.client.Set(ctx, p.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (p *RedisPool) Delete(ctx context.Context, key string) error {
	if err := p.client.Del(ctx, p.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// Clear removes every key under the pool prefix.
func (p *RedisPool) Clear(ctx context.Context) error {
	iter := p.client.Scan(ctx, 0, p.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := p.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis clear: %w", err)
		}
	}
	return iter.Err()
}

// Ping checks connectivity.
func (p *RedisPool) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close releases the client connections.
func (p *RedisPool) Close() error {
	return p.client.Close()
}
