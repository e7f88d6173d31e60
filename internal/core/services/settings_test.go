package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmerge/internal/core/domain"
)

type stubAIValidator struct {
	err    error
	called *domain.EmbeddingSettings
}

func (v *stubAIValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	v.called = config
	return v.err
}

func TestNewSettingsService(t *testing.T) {
	service := NewSettingsService(newFakeConfigStore(), nil)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(newFakeConfigStore(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := newFakeConfigStore()
	_ = store.Set("grouping.threshold", 0.9)
	_ = store.Set("grouping.top_k", 8)
	_ = store.Set("embedding.provider", "ollama")
	_ = store.Set("vector_index.backend", "sqlite")
	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, 0.9, settings.Grouping.Threshold)
	assert.Equal(t, 8, settings.Grouping.TopK)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, domain.IndexBackendSQLite, settings.VectorIndex.Backend)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := newFakeConfigStore()
	_ = store.Set("embedding.provider", "anthropic")
	_ = store.Set("vector_index.backend", "postgres")
	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.VectorIndex.Backend, settings.VectorIndex.Backend)
}

func TestSettingsService_Save(t *testing.T) {
	store := newFakeConfigStore()
	service := NewSettingsService(store, nil)
	settings := domain.DefaultAppSettings()
	settings.Grouping.Threshold = 0.75
	settings.Embedding.Provider = domain.AIProviderOpenAI
	settings.Embedding.Model = "text-embedding-3-small"
	settings.Embedding.APIKey = "sk-test"

	require.NoError(t, service.Save(&settings))

	assert.Equal(t, 0.75, store.GetFloat("grouping.threshold"))
	assert.Equal(t, "openai", store.GetString("embedding.provider"))
	assert.Equal(t, "sk-test", store.GetString("embedding.api_key"))

	loaded, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *loaded)
}

func TestSettingsService_Save_EmptyAPIKeyKeepsStored(t *testing.T) {
	store := newFakeConfigStore()
	_ = store.Set("embedding.api_key", "sk-existing")
	service := NewSettingsService(store, nil)
	settings := domain.DefaultAppSettings()

	require.NoError(t, service.Save(&settings))

	assert.Equal(t, "sk-existing", store.GetString("embedding.api_key"))
}

func TestSettingsService_Save_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.AppSettings)
	}{
		{"threshold above one", func(s *domain.AppSettings) { s.Grouping.Threshold = 1.5 }},
		{"zero top k", func(s *domain.AppSettings) { s.Grouping.TopK = 0 }},
		{"openai without key", func(s *domain.AppSettings) { s.Embedding.Provider = domain.AIProviderOpenAI }},
		{"bad base url", func(s *domain.AppSettings) { s.Embedding.BaseURL = "not a url" }},
		{"qdrant without host", func(s *domain.AppSettings) { s.VectorIndex.Backend = domain.IndexBackendQdrant }},
		{"too many init attempts", func(s *domain.AppSettings) { s.Embedding.InitAttempts = 50 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeConfigStore()
			service := NewSettingsService(store, nil)
			settings := domain.DefaultAppSettings()
			tt.mutate(&settings)

			err := service.Save(&settings)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, store.values)
		})
	}
}

func TestSettingsService_Set(t *testing.T) {
	store := newFakeConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.Set("grouping.threshold", "0.85"))
	require.NoError(t, service.Set("grouping.top_k", "12"))
	require.NoError(t, service.Set("embedding.init_attempts", "5"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 0.85, settings.Grouping.Threshold)
	assert.Equal(t, 12, settings.Grouping.TopK)
	assert.Equal(t, uint(5), settings.Embedding.InitAttempts)
}

func TestSettingsService_Set_Errors(t *testing.T) {
	service := NewSettingsService(newFakeConfigStore(), nil)

	assert.ErrorIs(t, service.Set("grouping.colour", "blue"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.Set("grouping.top_k", "many"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.Set("grouping.threshold", "2"), domain.ErrInvalidInput)
}

func TestSettingKeys(t *testing.T) {
	keys := SettingKeys()

	assert.Contains(t, keys, "grouping.threshold")
	assert.Contains(t, keys, "vector_index.backend")
	assert.IsIncreasing(t, keys)
}

func TestSettingsService_SetEmbeddingProvider_Ollama(t *testing.T) {
	service := NewSettingsService(newFakeConfigStore(), nil)

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)
	assert.Equal(t, 768, settings.Embedding.Dimensions)
}

func TestSettingsService_SetEmbeddingProvider_OpenAI(t *testing.T) {
	service := NewSettingsService(newFakeConfigStore(), nil)

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "text-embedding-3-large", "sk-test"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, "sk-test", settings.Embedding.APIKey)
	assert.Empty(t, settings.Embedding.BaseURL)
	assert.Equal(t, 3072, settings.Embedding.Dimensions)
}

func TestSettingsService_SetEmbeddingProvider_Errors(t *testing.T) {
	service := NewSettingsService(newFakeConfigStore(), nil)

	assert.Error(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", ""))
	assert.Error(t, service.SetEmbeddingProvider(domain.AIProvider("anthropic"), "", "key"))
}

func TestSettingsService_Validate(t *testing.T) {
	store := newFakeConfigStore()
	service := NewSettingsService(store, nil)
	require.NoError(t, service.Validate())

	_ = store.Set("vector_index.backend", "qdrant")
	assert.ErrorIs(t, service.Validate(), domain.ErrInvalidInput)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(newFakeConfigStore(), nil)

	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}

func TestSettingsService_ValidateEmbeddingConfig(t *testing.T) {
	assert.NoError(t, NewSettingsService(newFakeConfigStore(), nil).ValidateEmbeddingConfig())

	v := &stubAIValidator{err: errors.New("unreachable")}
	err := NewSettingsService(newFakeConfigStore(), v).ValidateEmbeddingConfig()

	assert.EqualError(t, err, "unreachable")
	require.NotNil(t, v.called)
	assert.Equal(t, domain.AIProviderLocal, v.called.Provider)
}

func TestSettingsService_SetLLM(t *testing.T) {
	service := NewSettingsService(newFakeConfigStore(), nil)

	assert.ErrorIs(t, service.Set("llm.provider", "anthropic"), domain.ErrInvalidInput)
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.LLMProviderNone, settings.LLM.Provider)

	require.NoError(t, service.Set("llm.provider", "ollama"))
	settings, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.LLMProviderOllama, settings.LLM.Provider)
	assert.Equal(t, "llama3.2", settings.LLM.Model)
	assert.True(t, settings.LLM.IsEnabled())

	assert.ErrorIs(t, service.Set("llm.provider", "gemini"), domain.ErrInvalidInput)
}

func TestSettingKeys_IncludeLLM(t *testing.T) {
	keys := SettingKeys()

	for _, k := range []string{"llm.provider", "llm.model", "llm.base_url", "llm.api_key"} {
		assert.Contains(t, keys, k)
	}
}
