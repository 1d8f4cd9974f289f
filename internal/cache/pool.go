// Package cache provides the byte oriented cache pools behind the cache service.
package cache

import (
	"context"
	"time"
)

// Pool stores opaque values under string keys. A zero ttl keeps the value until
// it is evicted or deleted.
type Pool interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

var (
	_ Pool = (*MemoryPool)(nil)
	_ Pool = (*RedisPool)(nil)
	_ Pool = NoopPool{}
)

// NoopPool never stores anything. It stands in when the cache is disabled.
type NoopPool struct{}

func (NoopPool) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NoopPool) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NoopPool) Delete(context.Context, string) error                     { return nil }
func (NoopPool) Clear(context.Context) error                              { return nil }

// WithDefaultTTL wraps p so that a zero ttl on Set becomes ttl. A zero ttl
// returns p unchanged.
func WithDefaultTTL(p Pool, ttl time.Duration) Pool {
	if ttl <= 0 {
		return p
	}
	return &defaultTTLPool{Pool: p, ttl: ttl}
}

type defaultTTLPool struct {
	Pool
	ttl time.Duration
}

func (p *defaultTTLPool) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = p.ttl
	}
	return p.Pool.Set(ctx, key, value, ttl)
}

// Unwrap returns the wrapped pool.
func (p *defaultTTLPool) Unwrap() Pool {
	return p.Pool
}
