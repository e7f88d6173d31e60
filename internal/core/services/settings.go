package services

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driven"
	"github.com/custodia-labs/docmerge/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyTopK           = "grouping.top_k"
	keyThreshold      = "grouping.threshold"
	keyTermThreshold  = "grouping.term_threshold"
	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keyEmbedDims      = "embedding.dimensions"
	keyEmbedRPS       = "embedding.requests_per_second"
	keyEmbedAttempts  = "embedding.init_attempts"
	keyIndexBackend   = "vector_index.backend"
	keyIndexDataDir   = "vector_index.data_dir"
	keyQdrantHost     = "vector_index.qdrant_host"
	keyQdrantPort     = "vector_index.qdrant_port"
	keyQdrantCollName = "vector_index.collection"
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
)

// settingSetters parse a string value into the matching settings field.
var settingSetters = map[string]func(*domain.AppSettings, string) error{
	keyTopK: func(s *domain.AppSettings, v string) error {
		return parseInt(v, &s.Grouping.TopK)
	},
	keyThreshold: func(s *domain.AppSettings, v string) error {
		return parseFloat(v, &s.Grouping.Threshold)
	},
	keyTermThreshold: func(s *domain.AppSettings, v string) error {
		return parseFloat(v, &s.Grouping.TermThreshold)
	},
	keyEmbedProvider: func(s *domain.AppSettings, v string) error {
		s.Embedding.Provider = domain.AIProvider(v)
		return nil
	},
	keyEmbedModel:   func(s *domain.AppSettings, v string) error { s.Embedding.Model = v; return nil },
	keyEmbedBaseURL: func(s *domain.AppSettings, v string) error { s.Embedding.BaseURL = v; return nil },
	keyEmbedAPIKey:  func(s *domain.AppSettings, v string) error { s.Embedding.APIKey = v; return nil },
	keyEmbedDims: func(s *domain.AppSettings, v string) error {
		return parseInt(v, &s.Embedding.Dimensions)
	},
	keyEmbedRPS: func(s *domain.AppSettings, v string) error {
		return parseFloat(v, &s.Embedding.RequestsPerSecond)
	},
	keyEmbedAttempts: func(s *domain.AppSettings, v string) error {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return err
		}
		s.Embedding.InitAttempts = uint(n)
		return nil
	},
	keyIndexBackend: func(s *domain.AppSettings, v string) error {
		s.VectorIndex.Backend = domain.IndexBackend(v)
		return nil
	},
	keyIndexDataDir:   func(s *domain.AppSettings, v string) error { s.VectorIndex.DataDir = v; return nil },
	keyQdrantHost:     func(s *domain.AppSettings, v string) error { s.VectorIndex.QdrantHost = v; return nil },
	keyQdrantCollName: func(s *domain.AppSettings, v string) error { s.VectorIndex.Collection = v; return nil },
	keyQdrantPort: func(s *domain.AppSettings, v string) error {
		return parseInt(v, &s.VectorIndex.QdrantPort)
	},
	keyLLMProvider: func(s *domain.AppSettings, v string) error {
		s.LLM.Provider = domain.LLMProvider(v)
		return nil
	},
	keyLLMModel:   func(s *domain.AppSettings, v string) error { s.LLM.Model = v; return nil },
	keyLLMBaseURL: func(s *domain.AppSettings, v string) error { s.LLM.BaseURL = v; return nil },
	keyLLMAPIKey:  func(s *domain.AppSettings, v string) error { s.LLM.APIKey = v; return nil },
}

// SettingKeys returns every key accepted by Set, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingSetters))
	for k := range settingSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	validate    *validator.Validate
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		validate:    validator.New(),
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Grouping: domain.GroupingSettings{
			TopK:          s.getInt(keyTopK, defaults.Grouping.TopK),
			Threshold:     s.getFloat(keyThreshold, defaults.Grouping.Threshold),
			TermThreshold: s.getFloat(keyTermThreshold, defaults.Grouping.TermThreshold),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.configStore.GetString(keyEmbedModel),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			Dimensions:        s.getInt(keyEmbedDims, defaults.Embedding.Dimensions),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
			InitAttempts:      uint(s.getInt(keyEmbedAttempts, int(defaults.Embedding.InitAttempts))),
		},
		VectorIndex: domain.VectorIndexSettings{
			Backend:    s.getBackend(defaults.VectorIndex.Backend),
			DataDir:    s.configStore.GetString(keyIndexDataDir),
			QdrantHost: s.configStore.GetString(keyQdrantHost),
			QdrantPort: s.getInt(keyQdrantPort, defaults.VectorIndex.QdrantPort),
			Collection: s.getString(keyQdrantCollName, defaults.VectorIndex.Collection),
		},
		LLM: domain.LLMSettings{
			Provider: s.getLLMProvider(defaults.LLM.Provider),
			Model:    s.configStore.GetString(keyLLMModel),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
	}
	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}

	return settings, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.check(settings); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyTopK, settings.Grouping.TopK},
		{keyThreshold, settings.Grouping.Threshold},
		{keyTermThreshold, settings.Grouping.TermThreshold},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyEmbedAttempts, int(settings.Embedding.InitAttempts)},
		{keyIndexBackend, settings.VectorIndex.Backend.String()},
		{keyIndexDataDir, settings.VectorIndex.DataDir},
		{keyQdrantHost, settings.VectorIndex.QdrantHost},
		{keyQdrantPort, settings.VectorIndex.QdrantPort},
		{keyQdrantCollName, settings.VectorIndex.Collection},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return nil
}

// Set updates one setting by its dotted key and saves.
func (s *SettingsService) Set(key, value string) error {
	setter, ok := settingSetters[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := setter(settings, value); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}
	return s.Save(settings)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	// Only Ollama needs a base URL by default
	switch {
	case provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "":
		settings.Embedding.BaseURL = "http://localhost:11434"
	case provider != domain.AIProviderOllama:
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Embedding.Dimensions = d
	}

	return s.Save(settings)
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.check(settings)
}

func (s *SettingsService) check(settings *domain.AppSettings) error {
	if err := s.validate.Struct(settings); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.IndexBackend) domain.IndexBackend {
	val := s.configStore.GetString(keyIndexBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.IndexBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getLLMProvider(defaultVal domain.LLMProvider) domain.LLMProvider {
	provider := domain.LLMProvider(s.configStore.GetString(keyLLMProvider))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func parseInt(v string, dst *int) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func parseFloat(v string, dst *float64) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return err
	}
	*dst = f
	return nil
}
