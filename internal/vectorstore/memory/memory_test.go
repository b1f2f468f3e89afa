package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mmrag/internal/domain"
	"mmrag/internal/vectorstore"
)

func TestStorageSearchRanksByCosine(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Reset(ctx, 2))

	require.NoError(t, s.Upsert(ctx, []domain.IndexPoint{
		{ID: "x", Vector: []float64{1, 0}},
		{ID: "y", Vector: []float64{0, 1}},
		{ID: "diag", Vector: []float64{1, 1}},
	}))

	results, err := s.Search(ctx, []float64{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Identical direction scores exactly 1.0 regardless of magnitude.
	assert.Equal(t, "x", results[0].Point.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-12)
	assert.Equal(t, "diag", results[1].Point.ID)
	assert.Equal(t, "y", results[2].Point.ID)
	assert.InDelta(t, 0.0, results[2].Score, 1e-12)
}

func TestStorageSearchLimit(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Reset(ctx, 2))
	require.NoError(t, s.Upsert(ctx, []domain.IndexPoint{
		{ID: "a", Vector: []float64{1, 0}},
		{ID: "b", Vector: []float64{0, 1}},
		{ID: "c", Vector: []float64{1, 1}},
	}))

	results, err := s.Search(ctx, []float64{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestStorageSearchStableTies(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Reset(ctx, 2))
	require.NoError(t, s.Upsert(ctx, []domain.IndexPoint{
		{ID: "first", Vector: []float64{1, 0}},
		{ID: "second", Vector: []float64{2, 0}},
	}))

	results, err := s.Search(ctx, []float64{3, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	// Equal scores keep insertion order.
	assert.Equal(t, "first", results[0].Point.ID)
	assert.Equal(t, "second", results[1].Point.ID)
}

func TestStorageUpsertDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Reset(ctx, 3))

	err := s.Upsert(ctx, []domain.IndexPoint{{ID: "bad", Vector: []float64{1, 2}}})
	assert.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStorageSearchDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Reset(ctx, 3))
	require.NoError(t, s.Upsert(ctx, []domain.IndexPoint{{ID: "a", Vector: []float64{1, 0, 0}}}))

	// A query of the wrong width is rejected, not scored over a prefix.
	_, err := s.Search(ctx, []float64{1, 0}, 10)
	assert.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)
}

func TestStorageResetClearsPoints(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Reset(ctx, 1))
	require.NoError(t, s.Upsert(ctx, []domain.IndexPoint{{ID: "a", Vector: []float64{1}}}))

	require.NoError(t, s.Reset(ctx, 1))
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStorageUpsertBeforeReset(t *testing.T) {
	s := NewStorage()
	err := s.Upsert(context.Background(), []domain.IndexPoint{{ID: "a", Vector: []float64{1}}})
	assert.Error(t, err)
}
