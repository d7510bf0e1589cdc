package redis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nivi1412/ticketing-platform/internal/config"
)

func newTestCache(t *testing.T) *AvailabilityCache {
	t.Helper()
	client := NewClient(&config.RedisConfig{Host: "localhost", Port: "6379"})
	if err := Ping(context.Background(), client); err != nil {
		t.Skip("Redis not available")
	}
	t.Cleanup(func() { client.Close() })
	return NewAvailabilityCache(client)
}

func TestAvailabilityCache(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	t.Run("保存した空席数を取得できる", func(t *testing.T) {
		eventID := uuid.NewString()
		require.NoError(t, cache.SetAvailableCount(ctx, eventID, 42, time.Minute))

		count, err := cache.GetAvailableCount(ctx, eventID)
		require.NoError(t, err)
		assert.Equal(t, 42, count)
	})

	t.Run("未保存のイベントはキャッシュミス", func(t *testing.T) {
		_, err := cache.GetAvailableCount(ctx, uuid.NewString())
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("無効化後はキャッシュミスになる", func(t *testing.T) {
		eventID := uuid.NewString()
		require.NoError(t, cache.SetAvailableCount(ctx, eventID, 10, time.Minute))
		require.NoError(t, cache.Invalidate(ctx, eventID))

		_, err := cache.GetAvailableCount(ctx, eventID)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("未保存のイベントの無効化はエラーにならない", func(t *testing.T) {
		assert.NoError(t, cache.Invalidate(ctx, uuid.NewString()))
	})

	t.Run("TTL経過後はキャッシュミスになる", func(t *testing.T) {
		eventID := uuid.NewString()
		require.NoError(t, cache.SetAvailableCount(ctx, eventID, 5, 50*time.Millisecond))

		time.Sleep(100 * time.Millisecond)

		_, err := cache.GetAvailableCount(ctx, eventID)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})
}
