package repository

import (
	"context"
	"testing"
	"time"

	"pethotel/internal/config"
	"pethotel/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisDocumentStore(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := NewRedisClient(config.RedisConfig{Address: s.Addr()})
	defer client.Close()

	repo := NewRedisDocumentStore(client)
	ctx := context.Background()
	key := models.PricingDocument

	t.Run("GetMissing", func(t *testing.T) {
		got, err := repo.GetDocument(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, repo.SetDocument(ctx, key, []byte(`{"iva":21}`)))

		got, err := repo.GetDocument(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, `{"iva":21}`, string(got))

		raw, err := s.Get("document:configs/hotel_pricing")
		require.NoError(t, err)
		assert.JSONEq(t, `{"iva":21}`, raw)
	})

	t.Run("Watch", func(t *testing.T) {
		got := make(chan string, 4)
		cancel, err := repo.WatchDocument(ctx, key, func(b []byte) { got <- string(b) })
		require.NoError(t, err)
		defer cancel()

		require.NoError(t, repo.SetDocument(ctx, models.GlobalConfigDocument, []byte(`{}`)))
		require.NoError(t, repo.SetDocument(ctx, key, []byte(`{"iva":10}`)))

		select {
		case v := <-got:
			assert.JSONEq(t, `{"iva":10}`, v)
		case <-time.After(2 * time.Second):
			t.Fatal("no change notification")
		}
	})

	t.Run("NilClient", func(t *testing.T) {
		repo := NewRedisDocumentStore(nil)
		_, err := repo.GetDocument(ctx, key)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "redis client is nil")
		assert.Error(t, repo.SetDocument(ctx, key, nil))
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})

	t.Run("ServerDown", func(t *testing.T) {
		down := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
		defer Close(down)
		_, err := NewRedisDocumentStore(down).GetDocument(ctx, key)
		assert.Error(t, err)
	})
}
