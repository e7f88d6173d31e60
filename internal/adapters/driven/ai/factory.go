// Package ai provides factory functions for creating embedding and LLM service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go"

	localembed "github.com/custodia-labs/docmerge/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/custodia-labs/docmerge/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docmerge/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/docmerge/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driven"
	"github.com/custodia-labs/docmerge/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// retryDelay is the base delay between initialisation attempts.
var retryDelay = time.Second

// InitEmbedding creates the configured embedding service and waits until it
// answers a ping, retrying with backoff up to InitAttempts times. Remote
// providers are throttled when RequestsPerSecond is set.
func InitEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: provider not configured. Run 'docmerge settings show' to check",
			domain.ErrEmbeddingUnavailable)
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	attempts := settings.InitAttempts
	if attempts == 0 {
		attempts = 1
	}

	err = retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			defer cancel()
			return svc.Ping(pingCtx)
		},
		retry.Attempts(attempts),
		retry.Delay(retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("embedding: %s not ready (attempt %d): %v", settings.Provider, n+1, err)
		}),
	)
	if err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: %s unreachable after %d attempts: %w",
			domain.ErrModelUnavailable, settings.Provider, attempts, err)
	}

	logger.Info("embedding: using %s (%s, %d dimensions)", settings.Provider, svc.ModelName(), svc.Dimensions())
	if settings.Provider != domain.AIProviderLocal {
		return ratelimit.Wrap(svc, settings.RequestsPerSecond), nil
	}
	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
// This is intended for use when settings are saved, to catch bad credentials early.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("embedding settings are required")
	}

	switch settings.Provider {
	case domain.AIProviderLocal:
		return localembed.NewEmbeddingService(localembed.Config{
			Dimensions: settings.Dimensions,
		}), nil

	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %q", settings.Provider)
	}
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := domain.EmbeddingDimensions()[settings.Model]

	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}
