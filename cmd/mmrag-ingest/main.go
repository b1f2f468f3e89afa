package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"mmrag/internal/chunker"
	"mmrag/internal/config"
	"mmrag/internal/embedding"
	"mmrag/internal/sequence"
	"mmrag/internal/service"
	"mmrag/internal/vectorstore"
	"mmrag/internal/vectorstore/memory"
	"mmrag/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, dataDir string
	var debug bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/mmrag/config.yaml if not provided)")
	flag.StringVar(&dataDir, "data", "", "Override the parsed corpus directory")
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
	if dataDir != "" {
		cfg.Data.ParsedDir = dataDir
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

	docs, err := sequence.LoadDir(cfg.Data.ParsedDir)
	if err != nil {
		log.Fatalf("failed to load parsed corpus: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bar := progressbar.Default(int64(len(docs)), "embedding documents")
	pipeline := service.NewPipeline(generator, index, logger)
	report, err := pipeline.Ingest(ctx, docs, func(string, bool) { _ = bar.Add(1) })
	if err != nil {
		log.Fatalf("ingestion failed: %v", err)
	}

	fmt.Printf("\nIngestion complete: %d/%d documents indexed, %d dropped (vector dimension %d)\n",
		report.Succeeded, report.Total, report.Dropped, report.Dimension)
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
