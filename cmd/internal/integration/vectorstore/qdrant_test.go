package vectorstore

import (
	"context"
	"sort"
	"testing"

	"slotbook/cmd/internal/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newQdrantStore(t *testing.T, endpoint testhelpers.Endpoint, embedder Embedder) *QdrantStore {
	t.Helper()
	store, err := NewQdrantStore(context.Background(), &QdrantConfig{
		Host:       endpoint.Host,
		Port:       endpoint.Port,
		Dimensions: testhelpers.KeywordDimensions,
	}, embedder, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestQdrantStore(t *testing.T) {
	endpoint := testhelpers.StartQdrant(t)
	ctx := context.Background()

	embedder := testhelpers.NewKeywordEmbedder()
	store := newQdrantStore(t, endpoint, embedder)

	const largeID int64 = 1 << 40
	fixtures := []struct {
		id   int64
		desc string
		meta Metadata
	}{
		{1, "Regular medical checkup", Metadata{Date: "2025-02-24", Time: "14:00", UserID: "user123"}},
		{2, "Dental cleaning", Metadata{Date: "2025-02-25", Time: "10:00", UserID: "u2"}},
		{3, "Follow-up checkup after surgery", Metadata{Date: "2025-02-26", Time: "09:30", UserID: "u3"}},
		{largeID, "Eye exam", Metadata{Date: "2025-03-01", Time: "16:00:00", UserID: "u4"}},
	}
	for _, f := range fixtures {
		require.NoError(t, store.IndexAppointment(ctx, f.id, f.desc, f.meta))
	}

	const unindexed int64 = 99
	embedder.SetErr(testhelpers.ErrUnavailable)
	require.Error(t, store.IndexAppointment(ctx, unindexed, "Regular medical checkup", Metadata{}))
	embedder.SetErr(nil)

	t.Run("ranks by ascending distance", func(t *testing.T) {
		matches, err := store.QuerySimilar(ctx, "Regular medical checkup", 10)
		require.NoError(t, err)
		require.Len(t, matches, len(fixtures))

		assert.True(t, sort.SliceIsSorted(matches, func(i, j int) bool {
			return matches[i].Distance < matches[j].Distance
		}))
		assert.Equal(t, int64(1), matches[0].ID)
		assert.InDelta(t, 0, matches[0].Distance, 1e-4)
		for _, m := range matches {
			assert.GreaterOrEqual(t, m.Distance, float32(-1e-4))
			assert.LessOrEqual(t, m.Distance, float32(2))
		}
	})

	t.Run("returns payload and ids as indexed", func(t *testing.T) {
		matches, err := store.QuerySimilar(ctx, "Eye exam", 1)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, largeID, matches[0].ID)
		assert.Equal(t, "Eye exam", matches[0].Description)
		assert.Equal(t, Metadata{Date: "2025-03-01", Time: "16:00:00", UserID: "u4"}, matches[0].Metadata)
	})

	t.Run("respects topK", func(t *testing.T) {
		for _, k := range []int{1, 2, 3} {
			matches, err := store.QuerySimilar(ctx, "checkup", k)
			require.NoError(t, err)
			assert.Len(t, matches, k)
		}

		matches, err := store.QuerySimilar(ctx, "checkup", 0)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("never returns an id that was not indexed", func(t *testing.T) {
		matches, err := store.QuerySimilar(ctx, "Regular medical checkup", 50)
		require.NoError(t, err)
		for _, m := range matches {
			assert.NotEqual(t, unindexed, m.ID)
		}
	})

	t.Run("reopens the existing collection", func(t *testing.T) {
		reopened := newQdrantStore(t, endpoint, embedder)
		matches, err := reopened.QuerySimilar(ctx, "Dental cleaning", 1)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, int64(2), matches[0].ID)
	})

	t.Run("embedding failure fails the query", func(t *testing.T) {
		embedder.SetErr(testhelpers.ErrUnavailable)
		defer embedder.SetErr(nil)

		_, err := store.QuerySimilar(ctx, "checkup", 3)
		require.Error(t, err)
	})
}
