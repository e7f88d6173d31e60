package main

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docmerge/internal/adapters/driven/ai"
	"github.com/custodia-labs/docmerge/internal/adapters/driven/markdown"
	"github.com/custodia-labs/docmerge/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docmerge/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docmerge/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/docmerge/internal/adapters/driving/cli"
	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driven"
	"github.com/custodia-labs/docmerge/internal/core/services"
	"github.com/custodia-labs/docmerge/internal/logger"
)

// newBootstrap returns the function the CLI calls once flags are parsed.
// The settings service is always returned so configuration problems can be
// fixed from the CLI.
func newBootstrap(settings *services.SettingsService) cli.Bootstrap {
	return func(ctx context.Context) (cli.Services, error) {
		out := cli.Services{Settings: settings}

		cfg, err := settings.Get()
		if err != nil {
			return out, fmt.Errorf("loading settings: %w", err)
		}

		embedder, err := ai.InitEmbedding(ctx, &cfg.Embedding)
		if err != nil {
			return out, err
		}

		index, destinations, err := openStores(ctx, cfg.VectorIndex, embedder.Dimensions())
		if err != nil {
			_ = embedder.Close()
			return out, err
		}

		session := services.NewSession(index, destinations)
		md := markdown.NewParser()
		review := services.NewReviewService(session, embedder)

		out.Ingest = services.NewIngestService(session, md, embedder, cfg.Grouping)
		out.Review = review
		out.Assembly = services.NewAssemblyService(session, md, review)
		out.Session = session

		llm, err := ai.InitLLM(ctx, &cfg.LLM)
		if err != nil {
			logger.Warn("merge drafting disabled: %v", err)
		}
		out.Draft = services.NewDraftService(review, llm)

		return out, nil
	}
}

// openStores opens the vector index and destination store for backend.
func openStores(
	ctx context.Context, cfg domain.VectorIndexSettings, dimensions int,
) (driven.VectorIndex, driven.DestinationStore, error) {
	switch cfg.Backend {
	case domain.IndexBackendMemory:
		return memory.NewVectorIndex(), memory.NewDestinationStore(), nil

	case domain.IndexBackendSQLite:
		store, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
		}
		logger.Debug("index: sqlite at %s", store.Path())
		return store.VectorIndex(), store.DestinationStore(), nil

	case domain.IndexBackendQdrant:
		index, err := qdrant.NewVectorIndex(ctx, qdrant.Config{
			Host:       cfg.QdrantHost,
			Port:       cfg.QdrantPort,
			Collection: cfg.Collection,
			Dimensions: dimensions,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
		}
		// Destinations are session scoped; qdrant only holds the index.
		return index, memory.NewDestinationStore(), nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidInput, cfg.Backend)
	}
}
