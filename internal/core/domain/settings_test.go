package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{name: "local is valid", provider: AIProviderLocal, expected: true},
		{name: "ollama is valid", provider: AIProviderOllama, expected: true},
		{name: "openai is valid", provider: AIProviderOpenAI, expected: true},
		{name: "anthropic is invalid", provider: AIProvider("anthropic"), expected: false},
		{name: "empty is invalid", provider: AIProvider(""), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.False(t, AIProviderLocal.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
}

func TestAIProvider_Description(t *testing.T) {
	for _, p := range AllEmbeddingProviders() {
		assert.NotEqual(t, unknownDescription, p.Description(), p)
	}
	assert.Equal(t, unknownDescription, AIProvider("x").Description())
}

func TestIndexBackend_IsValid(t *testing.T) {
	for _, b := range AllIndexBackends() {
		assert.True(t, b.IsValid(), b)
		assert.NotEqual(t, unknownDescription, b.Description())
	}
	assert.False(t, IndexBackend("redis").IsValid())
	assert.Equal(t, unknownDescription, IndexBackend("").Description())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{name: "local needs nothing", settings: EmbeddingSettings{Provider: AIProviderLocal}, expected: true},
		{name: "ollama needs no key", settings: EmbeddingSettings{Provider: AIProviderOllama}, expected: true},
		{name: "openai without key", settings: EmbeddingSettings{Provider: AIProviderOpenAI}, expected: false},
		{name: "openai with key", settings: EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk-x"}, expected: true},
		{name: "unknown provider", settings: EmbeddingSettings{Provider: "x"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, 5, s.Grouping.TopK)
	assert.InDelta(t, 0.8, s.Grouping.Threshold, 1e-9)
	assert.InDelta(t, 0.8, s.Grouping.TermThreshold, 1e-9)
	assert.Equal(t, AIProviderLocal, s.Embedding.Provider)
	assert.True(t, s.Embedding.IsConfigured())
	assert.Equal(t, IndexBackendSQLite, s.VectorIndex.Backend)
	require.NotEmpty(t, s.Embedding.Model)
	assert.Positive(t, s.Embedding.Dimensions)
}

func TestDefaultEmbeddingModels_CoverProviders(t *testing.T) {
	models := DefaultEmbeddingModels()
	for _, p := range AllEmbeddingProviders() {
		assert.NotEmpty(t, models[p], p)
	}
}

func TestLLMSettings_IsEnabled(t *testing.T) {
	tests := []struct {
		name     string
		settings LLMSettings
		expected bool
	}{
		{name: "none", settings: LLMSettings{Provider: LLMProviderNone}, expected: false},
		{name: "empty", settings: LLMSettings{}, expected: false},
		{name: "ollama", settings: LLMSettings{Provider: LLMProviderOllama}, expected: true},
		{name: "openai without key", settings: LLMSettings{Provider: LLMProviderOpenAI}, expected: false},
		{name: "anthropic with key", settings: LLMSettings{Provider: LLMProviderAnthropic, APIKey: "k"}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsEnabled())
		})
	}
}

func TestLLMProviders(t *testing.T) {
	models := DefaultLLMModels()
	for _, p := range AllLLMProviders() {
		assert.True(t, p.IsValid(), p)
		assert.NotEqual(t, unknownDescription, p.Description(), p)
		if p != LLMProviderNone {
			assert.NotEmpty(t, models[p], p)
		}
	}
	assert.False(t, LLMProvider("local").IsValid())
	assert.Equal(t, LLMProviderNone, DefaultAppSettings().LLM.Provider)
}
