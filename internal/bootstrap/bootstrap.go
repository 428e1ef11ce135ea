package bootstrap

import (
	"context"
	"fmt"

	"github.com/rsnlabs/docbase/internal/config"
	"github.com/rsnlabs/docbase/internal/core/ports"
	"github.com/rsnlabs/docbase/internal/core/usecase"
	"github.com/rsnlabs/docbase/internal/infrastructure/blobstore/localfs"
	"github.com/rsnlabs/docbase/internal/infrastructure/chunking"
	"github.com/rsnlabs/docbase/internal/infrastructure/extractor"
	"github.com/rsnlabs/docbase/internal/infrastructure/keyindex/leveldb"
	"github.com/rsnlabs/docbase/internal/infrastructure/llm/ollama"
	"github.com/rsnlabs/docbase/internal/infrastructure/repository/postgres"
	"github.com/rsnlabs/docbase/internal/infrastructure/resilience"
	"github.com/rsnlabs/docbase/internal/infrastructure/vector/qdrant"
	"github.com/rsnlabs/docbase/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Ingestor  ports.DocumentIngestor
	Retriever ports.DocumentRetriever
	Catalog   ports.CatalogReader
	Metrics   *metrics.PipelineMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	meta := postgres.NewMetadataStore(db)
	if err := meta.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	blobs, err := localfs.New(cfg.UploadPath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init blob storage: %w", err)
	}
	index := leveldb.New(cfg.KeyIndexPath)

	embedClient := ollama.New(cfg.OllamaURL, cfg.OllamaEmbedModel, cfg.EmbedRatePerSec, cfg.EmbedBurst)
	embedder := ollama.NewResilientEmbedder(embedClient, resilience.NewExecutor(resilience.DefaultPolicy()))

	vectors := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	extract := extractor.NewRegistry(blobs)

	ingestor := usecase.NewIngestionOrchestrator(blobs, index, meta, extract, chunker, embedder, vectors, cfg.DevMode)
	retriever := usecase.NewRetrievalService(embedder, vectors, cfg.SearchTopK, cfg.ScoreThreshold)
	catalog := usecase.NewCatalogService(meta)

	return &App{
		Config: cfg,

		Ingestor:  ingestor,
		Retriever: retriever,
		Catalog:   catalog,
		Metrics:   metrics.NewPipelineMetrics("docbase-api"),

		closeFn: func() {
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
