package embedding

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mmrag/internal/domain"
	"mmrag/internal/textnorm"
)

// Chunker splits combined text into bounded-size pieces.
type Chunker interface {
	Chunk(text string) []string
}

// DefaultModels is the prioritized candidate list: the primary model
// first, degraded fallbacks after it.
var DefaultModels = []string{"voyage-large-2", "voyage-02", "voyage-01"}

const imagePlaceholder = "[이미지]"

// Generator turns a document sequence into one aggregated embedding. Each
// chunk tries the candidate models in order and the first success wins;
// chunks where every candidate fails are skipped. A document with zero
// surviving chunks is dropped, not fatal to the batch.
type Generator struct {
	embedder Embedder
	chunker  Chunker
	models   []string
	log      *zap.Logger
}

func NewGenerator(embedder Embedder, ch Chunker, models []string, log *zap.Logger) *Generator {
	if len(models) == 0 {
		models = DefaultModels
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{embedder: embedder, chunker: ch, models: models, log: log}
}

// CombineText flattens a sequence into plain text: text segments are
// normalized, image segments are replaced by their caption (or a
// placeholder token), all joined with single spaces.
func CombineText(seq domain.DocumentSequence) string {
	parts := make([]string, 0, len(seq.Segments))
	for _, seg := range seq.Segments {
		switch seg.Kind {
		case domain.SegmentText:
			if t := textnorm.Normalize(seg.Content); t != "" {
				parts = append(parts, t)
			}
		case domain.SegmentImage:
			if caption := textnorm.Normalize(seg.Caption); caption != "" {
				parts = append(parts, "[이미지: "+caption+"]")
			} else {
				parts = append(parts, imagePlaceholder)
			}
		}
	}
	return strings.Join(parts, " ")
}

// EmbedSequence embeds one document. It returns ErrNoChunksEmbedded
// (wrapped) when no chunk produced a vector.
func (g *Generator) EmbedSequence(ctx context.Context, seq domain.DocumentSequence) (domain.DocumentEmbedding, error) {
	combined := CombineText(seq)
	chunks := g.chunker.Chunk(combined)

	vectors := make([]domain.EmbeddingVector, 0, len(chunks))
	for i, text := range chunks {
		values, model, err := g.embedChunk(ctx, text)
		if err != nil {
			g.log.Warn("chunk embedding failed",
				zap.String("document", seq.DocumentID),
				zap.Int("chunk", i),
				zap.Error(err))
			continue
		}
		// Fallback models differ in output width; a vector that does not
		// match the first accepted one cannot be aggregated with it.
		if len(vectors) > 0 && len(values) != len(vectors[0].Values) {
			g.log.Warn("chunk embedding dimension mismatch",
				zap.String("document", seq.DocumentID),
				zap.Int("chunk", i),
				zap.String("model", model),
				zap.Int("got", len(values)),
				zap.Int("want", len(vectors[0].Values)))
			continue
		}
		vectors = append(vectors, domain.EmbeddingVector{Values: values, Model: model, ChunkIndex: i})
	}

	if len(vectors) == 0 {
		return domain.DocumentEmbedding{}, fmt.Errorf("document %s: %w", seq.DocumentID, ErrNoChunksEmbedded)
	}

	return domain.DocumentEmbedding{
		DocumentID:   seq.DocumentID,
		Vector:       meanVector(vectors),
		CombinedText: combined,
		SegmentCount: len(seq.Segments),
		ImageCount:   seq.ImageCount(),
		Chunks:       vectors,
	}, nil
}

// EmbedQuery embeds a free-form question using the same fallback strategy
// applied to the whole query as a single chunk.
func (g *Generator) EmbedQuery(ctx context.Context, question string) (domain.EmbeddingVector, error) {
	values, model, err := g.embedChunk(ctx, textnorm.Normalize(question))
	if err != nil {
		return domain.EmbeddingVector{}, err
	}
	return domain.EmbeddingVector{Values: values, Model: model}, nil
}

func (g *Generator) embedChunk(ctx context.Context, text string) ([]float64, string, error) {
	for _, model := range g.models {
		values, err := g.embedder.Embed(ctx, model, text)
		if err != nil {
			g.log.Warn("embedding model failed", zap.String("model", model), zap.Error(err))
			continue
		}
		return values, model, nil
	}
	return nil, "", ErrAllModelsFailed
}

func meanVector(vectors []domain.EmbeddingVector) domain.EmbeddingVector {
	dim := len(vectors[0].Values)
	mean := make([]float64, dim)
	for _, v := range vectors {
		for i, x := range v.Values {
			mean[i] += x
		}
	}
	for i := range mean {
		mean[i] /= float64(len(vectors))
	}
	return domain.EmbeddingVector{Values: mean, Model: vectors[0].Model}
}
