package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmerge/internal/core/domain"
)

func TestInitLLM_Disabled(t *testing.T) {
	for _, settings := range []*domain.LLMSettings{nil, {}, {Provider: domain.LLMProviderNone}} {
		svc, err := InitLLM(context.Background(), settings)

		require.NoError(t, err)
		assert.Nil(t, svc)
	}
}

func TestInitLLM_MissingKey(t *testing.T) {
	_, err := InitLLM(context.Background(), &domain.LLMSettings{Provider: domain.LLMProviderAnthropic})

	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestInitLLM_Ollama(t *testing.T) {
	fastRetries(t)
	srv, pings := flakyOllama(t, 1)

	svc, err := InitLLM(context.Background(), &domain.LLMSettings{
		Provider: domain.LLMProviderOllama,
		BaseURL:  srv.URL,
		Model:    "mistral",
	})

	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.Equal(t, "mistral", svc.ModelName())
	assert.Equal(t, int32(2), pings.Load())
}

func TestInitLLM_Unreachable(t *testing.T) {
	fastRetries(t)
	srv, _ := flakyOllama(t, 10)

	_, err := InitLLM(context.Background(), &domain.LLMSettings{Provider: domain.LLMProviderOllama, BaseURL: srv.URL})

	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.LLMSettings
		wantErr   bool
		wantModel string
	}{
		{name: "nil settings", wantErr: true},
		{name: "unknown provider", settings: &domain.LLMSettings{Provider: "gemini"}, wantErr: true},
		{name: "ollama default model", settings: &domain.LLMSettings{Provider: domain.LLMProviderOllama}, wantModel: "llama3.2"},
		{name: "openai without key", settings: &domain.LLMSettings{Provider: domain.LLMProviderOpenAI}, wantErr: true},
		{
			name:      "openai",
			settings:  &domain.LLMSettings{Provider: domain.LLMProviderOpenAI, APIKey: "sk", Model: "gpt-4o"},
			wantModel: "gpt-4o",
		},
		{
			name:      "anthropic",
			settings:  &domain.LLMSettings{Provider: domain.LLMProviderAnthropic, APIKey: "key"},
			wantModel: "claude-3-5-haiku-latest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}
