package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"mmrag/internal/domain"
	"mmrag/internal/vectorstore"
)

// Storage is an in-memory vector index using brute-force cosine
// similarity. It backs tests and offline runs with the same contract as
// the remote index.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	points    []domain.IndexPoint
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Reset(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.points = nil
	return nil
}

func (s *Storage) Upsert(ctx context.Context, points []domain.IndexPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		return errors.New("collection not initialized")
	}
	for _, p := range points {
		if len(p.Vector) != s.dimension {
			return fmt.Errorf("point %s: %w: got %d, collection wants %d",
				p.ID, vectorstore.ErrDimensionMismatch, len(p.Vector), s.dimension)
		}
	}
	s.points = append(s.points, points...)
	return nil
}

func (s *Storage) Search(ctx context.Context, vector []float64, limit int) ([]domain.ScoredPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dimension != 0 && len(vector) != s.dimension {
		return nil, fmt.Errorf("query vector: %w: got %d, collection wants %d",
			vectorstore.ErrDimensionMismatch, len(vector), s.dimension)
	}
	if limit <= 0 {
		limit = 5
	}
	scored := make([]domain.ScoredPoint, 0, len(s.points))
	for _, p := range s.points {
		scored = append(scored, domain.ScoredPoint{Point: p, Score: cosine(p.Vector, vector)})
	}
	// Stable sort keeps insertion order on score ties.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if limit > len(scored) {
		limit = len(scored)
	}
	return scored[:limit], nil
}

func (s *Storage) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points), nil
}

func cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
