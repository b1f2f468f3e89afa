package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mmrag/internal/domain"
	"mmrag/internal/embedding"
	"mmrag/internal/sequence"
	"mmrag/internal/vectorstore"
)

const previewMaxChars = 100

// Pipeline runs the offline ingestion path: build sequences, embed them
// with fallback, rebuild the collection and upsert every surviving
// document as one point.
type Pipeline struct {
	generator *embedding.Generator
	index     vectorstore.Index
	log       *zap.Logger
}

// Report summarizes one ingestion run.
type Report struct {
	Total     int
	Succeeded int
	Dropped   int
	Dimension int
}

func NewPipeline(generator *embedding.Generator, index vectorstore.Index, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{generator: generator, index: index, log: log}
}

// Ingest processes the whole corpus as a batch. Per-document embedding
// failures drop that document and continue; collection reset or upsert
// failures are fatal to the run so a bad write never lands partially.
// The optional progress callback fires once per processed document.
func (p *Pipeline) Ingest(ctx context.Context, docs []domain.Document, progress func(id string, ok bool)) (Report, error) {
	report := Report{Total: len(docs)}

	var points []domain.IndexPoint
	for _, doc := range docs {
		seq := sequence.Build(doc)
		emb, err := p.generator.EmbedSequence(ctx, seq)
		if err != nil {
			if !errors.Is(err, embedding.ErrNoChunksEmbedded) {
				return report, err
			}
			report.Dropped++
			p.log.Warn("document dropped", zap.String("document", doc.ID), zap.Error(err))
			if progress != nil {
				progress(doc.ID, false)
			}
			continue
		}
		points = append(points, makePoint(seq, emb))
		report.Succeeded++
		p.log.Info("document embedded",
			zap.String("document", doc.ID),
			zap.Int("chunks", len(emb.Chunks)),
			zap.Int("images", emb.ImageCount))
		if progress != nil {
			progress(doc.ID, true)
		}
	}

	if len(points) == 0 {
		return report, errors.New("no documents produced embeddings")
	}

	// Collection width follows the first ingested vector.
	report.Dimension = len(points[0].Vector)
	if err := p.index.Reset(ctx, report.Dimension); err != nil {
		return report, fmt.Errorf("reset collection: %w", err)
	}
	if err := p.index.Upsert(ctx, points); err != nil {
		return report, fmt.Errorf("upsert points: %w", err)
	}
	return report, nil
}

func makePoint(seq domain.DocumentSequence, emb domain.DocumentEmbedding) domain.IndexPoint {
	var images []domain.ImageMeta
	for _, seg := range seq.Segments {
		if seg.Kind != domain.SegmentImage {
			continue
		}
		images = append(images, domain.ImageMeta{
			Name:    seg.ImageName,
			Caption: seg.Caption,
			Preview: truncate(seg.Content, previewMaxChars),
		})
	}
	return domain.IndexPoint{
		ID:     uuid.NewString(),
		Vector: emb.Vector.Values,
		Payload: domain.PointPayload{
			DocumentID:   emb.DocumentID,
			Text:         emb.CombinedText,
			SegmentCount: emb.SegmentCount,
			ImageCount:   emb.ImageCount,
			Images:       images,
		},
	}
}

func truncate(s string, maxChars int) string {
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxChars]) + "..."
}
