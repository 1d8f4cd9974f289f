package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemorySize is the capacity used when none is configured.
const DefaultMemorySize = 1024

type memoryItem struct {
	value   []byte
	expires time.Time
}

func (i memoryItem) expired(now time.Time) bool {
	return !i.expires.IsZero() && now.After(i.expires)
}

// MemoryPool is a bounded in-process LRU with per entry expiry.
type MemoryPool struct {
	prefix string
	items  *lru.Cache[string, memoryItem]
	now    func() time.Time
}

// NewMemoryPool creates a pool holding at most size entries.
func NewMemoryPool(size int, prefix string) (*MemoryPool, error) {
	if size <= 0 {
		size = DefaultMemorySize
	}
	items, err := lru.New[string, memoryItem](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	return &MemoryPool{prefix: prefix, items: items, now: time.Now}, nil
}

func (p *MemoryPool) Get(_ context.Context, key string) ([]byte, bool, error) {
	k := p.prefix + key
	item, ok := p.items.Get(k)
	if !ok {
		return nil, false, nil
	}
	if item.expired(p.now()) {
		p.items.Remove(k)
		return nil, false, nil
	}
	return item.value, true, nil
}

func (p *MemoryPool) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	item := memoryItem{value: value}
	if ttl > 0 {
		item.expires = p.now().Add(ttl)
	}
	p.items.Add(p.prefix+key, item)
	return nil
}

func (p *MemoryPool) Delete(_ context.Context, key string) error {
	p.items.Remove(p.prefix + key)
	return nil
}

func (p *MemoryPool) Clear(context.Context) error {
	p.items.Purge()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (p *MemoryPool) Len() int {
	return p.items.Len()
}
