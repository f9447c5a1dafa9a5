package ports

import (
	"context"
	"testing"

	"github.com/aretw0/fundchat/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunCandidateCacheContract runs a suite of tests to verify that a CandidateCache
// implementation adheres to the defined interface contract.
// The cache must be empty when passed in.
func RunCandidateCacheContract(t *testing.T, cache CandidateCache) {
	ctx := context.Background()

	t.Run("Load Empty", func(t *testing.T) {
		_, err := cache.Load(ctx)
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("Save and Load", func(t *testing.T) {
		names := []string{"BlueFund", "RedFund", "Itaú Renda"}
		require.NoError(t, cache.Save(ctx, names), "Save should not return error")

		loaded, err := cache.Load(ctx)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, names, loaded, "order and content must be preserved")
	})

	t.Run("Save Replaces", func(t *testing.T) {
		require.NoError(t, cache.Save(ctx, []string{"A"}))
		require.NoError(t, cache.Save(ctx, []string{"B", "C"}))

		loaded, err := cache.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"B", "C"}, loaded)
	})

	t.Run("Invalidate", func(t *testing.T) {
		require.NoError(t, cache.Save(ctx, []string{"A"}))
		require.NoError(t, cache.Invalidate(ctx), "Invalidate should not return error")

		_, err := cache.Load(ctx)
		assert.ErrorIs(t, err, domain.ErrCacheMiss, "Load after Invalidate should miss")

		assert.NoError(t, cache.Invalidate(ctx), "Invalidate on empty cache is a no-op")
	})
}
