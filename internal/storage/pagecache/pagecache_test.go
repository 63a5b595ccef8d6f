package pagecache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Minute)

	t.Run("round trip", func(t *testing.T) {
		cache.Set(ctx, "page", []byte(`{"hero_slides":[]}`), time.Minute)

		got, ok := cache.Get(ctx, "page")
		require.True(t, ok)
		assert.Equal(t, []byte(`{"hero_slides":[]}`), got)
	})

	t.Run("miss", func(t *testing.T) {
		_, ok := cache.Get(ctx, "absent")
		assert.False(t, ok)
	})

	t.Run("invalidate", func(t *testing.T) {
		cache.Set(ctx, "stale", []byte("x"), time.Minute)
		cache.Invalidate(ctx, "stale")

		_, ok := cache.Get(ctx, "stale")
		assert.False(t, ok)
	})

	t.Run("expiry", func(t *testing.T) {
		cache.Set(ctx, "short", []byte("x"), 10*time.Millisecond)
		time.Sleep(30 * time.Millisecond)

		_, ok := cache.Get(ctx, "short")
		assert.False(t, ok)
	})
}
