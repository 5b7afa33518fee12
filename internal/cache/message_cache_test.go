package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postdrop/backend/internal/domain"
)

func TestMessageCache(t *testing.T) {
	ctx := context.Background()

	t.Run("写入后可读取", func(t *testing.T) {
		c := NewMessageCache(time.Minute)
		defer c.Close()

		c.Set(ctx, "sid-1", []domain.Message{{ID: "1", Subject: "hello"}})

		messages, ok := c.Get(ctx, "sid-1")
		require.True(t, ok)
		require.Len(t, messages, 1)
		assert.Equal(t, "hello", messages[0].Subject)
	})

	t.Run("未写入的键未命中", func(t *testing.T) {
		c := NewMessageCache(time.Minute)
		defer c.Close()

		_, ok := c.Get(ctx, "sid-missing")
		assert.False(t, ok)
	})

	t.Run("过期条目未命中", func(t *testing.T) {
		c := NewMessageCache(-time.Second)
		defer c.Close()

		c.Set(ctx, "sid-1", []domain.Message{{ID: "1"}})

		_, ok := c.Get(ctx, "sid-1")
		assert.False(t, ok)
	})

	t.Run("失效后未命中", func(t *testing.T) {
		c := NewMessageCache(time.Minute)
		defer c.Close()

		c.Set(ctx, "sid-1", []domain.Message{{ID: "1"}})
		c.Invalidate(ctx, "sid-1")

		_, ok := c.Get(ctx, "sid-1")
		assert.False(t, ok)
	})
}
