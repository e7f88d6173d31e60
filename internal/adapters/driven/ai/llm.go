package ai

import (
	"context"
	"fmt"

	"github.com/avast/retry-go"

	anthropicllm "github.com/custodia-labs/docmerge/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/docmerge/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docmerge/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driven"
	"github.com/custodia-labs/docmerge/internal/logger"
)

// llmInitAttempts bounds pings of the drafting model at startup.
const llmInitAttempts = 2

// InitLLM creates the configured LLM service and pings it. It returns nil
// and no error when drafting is disabled.
func InitLLM(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || settings.Provider == domain.LLMProviderNone || settings.Provider == "" {
		return nil, nil
	}
	if !settings.IsEnabled() {
		return nil, fmt.Errorf("%w: llm provider %s is not configured", domain.ErrModelUnavailable, settings.Provider)
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}

	err = retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			defer cancel()
			return svc.Ping(pingCtx)
		},
		retry.Attempts(llmInitAttempts),
		retry.Delay(retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("llm: %s not ready (attempt %d): %v", settings.Provider, n+1, err)
		}),
	)
	if err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: %s unreachable: %w", domain.ErrModelUnavailable, settings.Provider, err)
	}

	logger.Info("llm: using %s (%s)", settings.Provider, svc.ModelName())
	return svc, nil
}

// CreateLLMService creates the LLM service for settings without contacting it.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, fmt.Errorf("llm settings are required")
	}

	switch settings.Provider {
	case domain.LLMProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.LLMProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.LLMProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", settings.Provider)
	}
}
