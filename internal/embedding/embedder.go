package embedding

import (
	"context"
	"errors"
)

// Embedder converts one piece of text into a numeric vector using the
// named model. Implementations talk to a remote embedding service.
type Embedder interface {
	Embed(ctx context.Context, model, text string) ([]float64, error)
}

var (
	// ErrRateLimited marks a rate-limit response from the embedding
	// service, distinguishable from other failures for retry decisions.
	ErrRateLimited = errors.New("embedding service rate limited")

	// ErrAllModelsFailed is returned when every candidate model failed
	// for one chunk.
	ErrAllModelsFailed = errors.New("all embedding models failed")

	// ErrNoChunksEmbedded is returned when no chunk of a document
	// produced a vector; the document is dropped from the batch.
	ErrNoChunksEmbedded = errors.New("no chunks embedded")
)
