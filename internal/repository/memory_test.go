package repository

import (
	"context"
	"sync"
	"testing"

	"pethotel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDocumentStore(t *testing.T) {
	repo := NewMemoryDocumentStore()
	ctx := context.Background()
	key := models.PricingDocument

	t.Run("GetMissing", func(t *testing.T) {
		got, err := repo.GetDocument(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("SetAndGet", func(t *testing.T) {
		data := []byte(`{"iva":21}`)
		require.NoError(t, repo.SetDocument(ctx, key, data))
		data[0] = 'x'

		got, err := repo.GetDocument(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, `{"iva":21}`, string(got), "stored copy is not aliased")
	})

	t.Run("Watch", func(t *testing.T) {
		var mu sync.Mutex
		var seen []string
		cancel, err := repo.WatchDocument(ctx, key, func(b []byte) {
			mu.Lock()
			seen = append(seen, string(b))
			mu.Unlock()
		})
		require.NoError(t, err)

		require.NoError(t, repo.SetDocument(ctx, key, []byte(`{"iva":10}`)))
		require.NoError(t, repo.SetDocument(ctx, models.GlobalConfigDocument, []byte(`{}`)))
		cancel()
		cancel()
		require.NoError(t, repo.SetDocument(ctx, key, []byte(`{"iva":4}`)))

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []string{`{"iva":10}`}, seen)
	})
}
