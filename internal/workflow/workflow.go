package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mmrag/internal/domain"
	"mmrag/internal/embedding"
	"mmrag/internal/generation"
	"mmrag/internal/vectorstore"
)

// DefaultTopK is the retriever's default result count.
const DefaultTopK = 10

// State is the transient per-question record flowing through the two
// pipeline stages. It is created per question and discarded afterwards.
type State struct {
	Question  string
	Documents []domain.RetrievedDocument
	Answer    string
}

// Workflow is the retrieve-then-generate pipeline over an already built
// index. It holds no mutable state across questions.
type Workflow struct {
	embedder  *embedding.Generator
	index     vectorstore.Index
	generator generation.Generator
	topK      int
	log       *zap.Logger
}

func New(embedder *embedding.Generator, index vectorstore.Index, generator generation.Generator, topK int, log *zap.Logger) *Workflow {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Workflow{embedder: embedder, index: index, generator: generator, topK: topK, log: log}
}

// Retrieve embeds the question with the same model fallback used at
// ingestion time and fetches the nearest documents. An empty result set
// is a valid outcome, not an error.
func (w *Workflow) Retrieve(ctx context.Context, state State) (State, error) {
	vec, err := w.embedder.EmbedQuery(ctx, state.Question)
	if err != nil {
		return state, fmt.Errorf("embed question: %w", err)
	}
	hits, err := w.index.Search(ctx, vec.Values, w.topK)
	if err != nil {
		return state, fmt.Errorf("search index: %w", err)
	}
	state.Documents = make([]domain.RetrievedDocument, 0, len(hits))
	for _, h := range hits {
		state.Documents = append(state.Documents, domain.RetrievedDocument{
			DocumentID: h.Point.Payload.DocumentID,
			Text:       h.Point.Payload.Text,
			Score:      h.Score,
		})
	}
	w.log.Debug("retrieved documents",
		zap.String("question", state.Question),
		zap.Int("count", len(state.Documents)))
	return state, nil
}

// Generate asks the generation service to answer from the retrieved
// context only. With no retrieved documents the prompt instructs the
// model to say so rather than crash or invent.
func (w *Workflow) Generate(ctx context.Context, state State) (State, error) {
	prompt := generation.BuildPrompt(state.Documents, state.Question)
	answer, err := w.generator.Generate(ctx, prompt)
	if err != nil {
		return state, fmt.Errorf("generate answer: %w", err)
	}
	state.Answer = answer
	return state, nil
}

// Run executes Retrieve then Generate for one question.
func (w *Workflow) Run(ctx context.Context, question string) (State, error) {
	state := State{Question: question}
	state, err := w.Retrieve(ctx, state)
	if err != nil {
		return state, err
	}
	return w.Generate(ctx, state)
}
