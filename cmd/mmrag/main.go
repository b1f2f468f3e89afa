package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"mmrag/internal/chunker"
	"mmrag/internal/config"
	"mmrag/internal/embedding"
	"mmrag/internal/generation"
	"mmrag/internal/tui"
	"mmrag/internal/vectorstore"
	"mmrag/internal/vectorstore/memory"
	"mmrag/internal/vectorstore/qdrant"
	"mmrag/internal/workflow"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var topK int
	var useTUI, debug bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/mmrag/config.yaml if not provided)")
	flag.IntVar(&topK, "topk", 0, "Number of documents to retrieve per question (overrides config)")
	flag.BoolVar(&useTUI, "tui", false, "Use the full-screen chat interface")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if topK <= 0 {
		topK = cfg.Retrieval.TopK
	}

	logger, err := newLogger(debug)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	client, err := embedding.NewClient(embedding.Config{
		BaseURL:    cfg.Embedding.BaseURL,
		APIKeyEnv:  cfg.Embedding.APIKeyEnv,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSecs) * time.Second,
		RetryDelay: time.Duration(cfg.Embedding.RetryDelaySecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("embedding client init failed: %v", err)
	}
	generator := embedding.NewGenerator(client, chunker.NewSentenceChunker(cfg.Chunker.MaxChars), cfg.Embedding.Models, logger)

	index, err := buildIndex(cfg)
	if err != nil {
		log.Fatalf("vector store init failed: %v", err)
	}

	answerer, err := generation.NewClient(generation.Config{
		BaseURL:    cfg.Generation.BaseURL,
		APIKeyEnv:  cfg.Generation.APIKeyEnv,
		Model:      cfg.Generation.Model,
		Timeout:    time.Duration(cfg.Generation.TimeoutSecs) * time.Second,
		RetryDelay: time.Duration(cfg.Generation.RetryDelaySecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("generation client init failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	count, err := index.Count(ctx)
	if err != nil {
		log.Fatalf("failed to reach the vector index: %v", err)
	}
	if count == 0 {
		log.Fatalf("the collection is empty; run mmrag-ingest first")
	}
	fmt.Printf("컬렉션에 저장된 문서: %d개\n", count)

	wf := workflow.New(generator, index, answerer, topK, logger)

	if useTUI {
		m := tui.New(&asker{ctx: ctx, wf: wf})
		if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
			log.Fatal(err)
		}
		return
	}
	if err := wf.RunInteractive(ctx, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("interactive session failed: %v", err)
	}
}

// asker adapts the workflow to the TUI port.
type asker struct {
	ctx context.Context
	wf  *workflow.Workflow
}

func (a *asker) Ask(question string) (workflow.State, error) {
	return a.wf.Run(a.ctx, question)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func buildIndex(cfg *config.AppConfig) (vectorstore.Index, error) {
	switch cfg.VectorStore.Type {
	case "memory":
		return memory.NewStorage(), nil
	case "qdrant", "":
		if cfg.VectorStore.Qdrant == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}
}
