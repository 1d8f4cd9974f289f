package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPool(t *testing.T) {
	t.Parallel()

	t.Run("set and get", func(t *testing.T) {
		t.Parallel()
		p, err := NewMemoryPool(4, "kindling:")
		require.NoError(t, err)

		require.NoError(t, p.Set(t.Context(), "a", []byte("one"), 0))
		val, ok, err := p.Get(t.Context(), "a")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "one", string(val))
	})

	t.Run("miss", func(t *testing.T) {
		t.Parallel()
		p, err := NewMemoryPool(4, "")
		require.NoError(t, err)

		val, ok, err := p.Get(t.Context(), "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, val)
	})

	t.Run("expiry", func(t *testing.T) {
		t.Parallel()
		p, err := NewMemoryPool(4, "")
		require.NoError(t, err)
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		p.now = func() time.Time { return now }

		require.NoError(t, p.Set(t.Context(), "a", []byte("one"), time.Minute))
		_, ok, _ := p.Get(t.Context(), "a")
		assert.True(t, ok)

		now = now.Add(2 * time.Minute)
		_, ok, _ = p.Get(t.Context(), "a")
		assert.False(t, ok)
		assert.Equal(t, 0, p.Len())
	})

	t.Run("eviction", func(t *testing.T) {
		t.Parallel()
		p, err := NewMemoryPool(2, "")
		require.NoError(t, err)

		for _, k := range []string{"a", "b", "c"} {
			require.NoError(t, p.Set(t.Context(), k, []byte(k), 0))
		}
		_, ok, _ := p.Get(t.Context(), "a")
		assert.False(t, ok)
		assert.Equal(t, 2, p.Len())
	})

	t.Run("delete and clear", func(t *testing.T) {
		t.Parallel()
		p, err := NewMemoryPool(0, "")
		require.NoError(t, err)

		require.NoError(t, p.Set(t.Context(), "a", []byte("1"), 0))
		require.NoError(t, p.Set(t.Context(), "b", []byte("2"), 0))
		require.NoError(t, p.Delete(t.Context(), "a"))
		_, ok, _ := p.Get(t.Context(), "a")
		assert.False(t, ok)

		require.NoError(t, p.Clear(t.Context()))
		assert.Equal(t, 0, p.Len())
	})
}

func TestNoopPool(t *testing.T) {
	t.Parallel()
	var p NoopPool
	require.NoError(t, p.Set(t.Context(), "a", []byte("1"), time.Hour))
	_, ok, err := p.Get(t.Context(), "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, p.Delete(t.Context(), "a"))
	assert.NoError(t, p.Clear(t.Context()))
}

func TestWithDefaultTTL(t *testing.T) {
	t.Parallel()

	p, err := NewMemoryPool(4, "")
	require.NoError(t, err)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	assert.Same(t, p, WithDefaultTTL(p, 0))

	wrapped := WithDefaultTTL(p, time.Minute)
	require.NoError(t, wrapped.Set(t.Context(), "short", []byte("x"), 0))
	require.NoError(t, wrapped.Set(t.Context(), "long", []byte("y"), time.Hour))

	now = now.Add(2 * time.Minute)
	_, ok, _ := wrapped.Get(t.Context(), "short")
	assert.False(t, ok)
	_, ok, _ = wrapped.Get(t.Context(), "long")
	assert.True(t, ok)
}
