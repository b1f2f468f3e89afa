package vectorstore

import (
	"context"
	"errors"

	"mmrag/internal/domain"
)

// Index owns the lifecycle of one named collection in the similarity
// index: wholesale reset, point upsert and nearest-neighbor search by
// cosine similarity.
type Index interface {
	// Reset drops any existing collection (absence is not an error) and
	// creates a fresh one with the given vector width.
	Reset(ctx context.Context, dimension int) error
	// Upsert writes all points. Points whose vector width differs from
	// the collection's are rejected before anything is written.
	Upsert(ctx context.Context, points []domain.IndexPoint) error
	// Search returns up to limit nearest points, descending by score.
	Search(ctx context.Context, vector []float64, limit int) ([]domain.ScoredPoint, error)
	// Count reports the number of stored points.
	Count(ctx context.Context) (int, error)
}

// ErrDimensionMismatch rejects writes whose vector width differs from the
// collection's declared dimensionality. Ingestion fails closed on it.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")
