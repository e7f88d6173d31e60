package domain

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available embedding providers.
const (
	// AIProviderLocal is the built-in offline hashing embedder.
	AIProviderLocal AIProvider = "local"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderLocal, AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs on this machine.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderLocal || p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderLocal:
		return "Local (feature hashing, offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// LLMProvider identifies a text generation provider for merge drafting.
type LLMProvider string

// Available LLM providers.
const (
	// LLMProviderNone disables merge drafting.
	LLMProviderNone LLMProvider = "none"

	LLMProviderOllama    LLMProvider = "ollama"
	LLMProviderOpenAI    LLMProvider = "openai"
	LLMProviderAnthropic LLMProvider = "anthropic"
)

// IsValid returns true if the LLM provider is recognised.
func (p LLMProvider) IsValid() bool {
	switch p {
	case LLMProviderNone, LLMProviderOllama, LLMProviderOpenAI, LLMProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p LLMProvider) RequiresAPIKey() bool {
	return p == LLMProviderOpenAI || p == LLMProviderAnthropic
}

// String returns the string representation.
func (p LLMProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p LLMProvider) Description() string {
	switch p {
	case LLMProviderNone:
		return "None (drafting disabled)"
	case LLMProviderOllama:
		return "Ollama (local)"
	case LLMProviderOpenAI:
		return "OpenAI (cloud)"
	case LLMProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// IndexBackend identifies where the vector index lives.
type IndexBackend string

// Available index backends.
const (
	IndexBackendMemory IndexBackend = "memory"
	IndexBackendSQLite IndexBackend = "sqlite"
	IndexBackendQdrant IndexBackend = "qdrant"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendMemory, IndexBackendSQLite, IndexBackendQdrant:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b IndexBackend) Description() string {
	switch b {
	case IndexBackendMemory:
		return "Memory (session only)"
	case IndexBackendSQLite:
		return "SQLite (local file)"
	case IndexBackendQdrant:
		return "Qdrant (remote)"
	default:
		return unknownDescription
	}
}

// GroupingSettings tunes the similarity grouping pass.
type GroupingSettings struct {
	// TopK is the neighbour-query fan-out.
	TopK int `validate:"gte=1,lte=100"`

	// Threshold is the minimum similarity for sections to group.
	Threshold float64 `validate:"gt=0,lte=1"`

	// TermThreshold is the minimum similarity for glossary terms to group.
	TermThreshold float64 `validate:"gt=0,lte=1"`
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider `validate:"required,oneof=local ollama openai"`

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama, or an OpenAI-compatible server).
	BaseURL string `validate:"omitempty,url"`

	// APIKey is the API key (for OpenAI).
	APIKey string `validate:"required_if=Provider openai"`

	// Dimensions is the vector size produced by the local provider.
	Dimensions int `validate:"gte=8,lte=8192"`

	// RequestsPerSecond throttles remote providers; 0 disables throttling.
	RequestsPerSecond float64 `validate:"gte=0"`

	// InitAttempts bounds retries of model initialisation.
	InitAttempts uint `validate:"gte=1,lte=10"`
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds the optional merge-drafting model configuration.
type LLMSettings struct {
	// Provider is the LLM provider; "none" disables drafting.
	Provider LLMProvider `validate:"required,oneof=none ollama openai anthropic"`

	// Model is the model name. Empty uses the provider default.
	Model string

	// BaseURL overrides the API endpoint.
	BaseURL string `validate:"omitempty,url"`

	// APIKey is the API key (for OpenAI and Anthropic).
	APIKey string `validate:"required_if=Provider openai,required_if=Provider anthropic"`
}

// IsEnabled returns true if a usable LLM provider is configured.
func (l LLMSettings) IsEnabled() bool {
	if l.Provider == LLMProviderNone || !l.Provider.IsValid() {
		return false
	}
	return !l.Provider.RequiresAPIKey() || l.APIKey != ""
}

// VectorIndexSettings holds vector index configuration.
type VectorIndexSettings struct {
	// Backend selects the index implementation.
	Backend IndexBackend `validate:"required,oneof=memory sqlite qdrant"`

	// DataDir holds the sqlite database.
	DataDir string

	// QdrantHost and QdrantPort address the qdrant gRPC endpoint.
	QdrantHost string `validate:"required_if=Backend qdrant"`
	QdrantPort int    `validate:"gte=0,lte=65535"`

	// Collection is the qdrant collection name.
	Collection string `validate:"required_if=Backend qdrant"`
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Grouping holds similarity grouping settings.
	Grouping GroupingSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// VectorIndex holds vector index settings.
	VectorIndex VectorIndexSettings

	// LLM holds merge-drafting settings.
	LLM LLMSettings
}

// Grouping defaults.
const (
	DefaultTopK          = 5
	DefaultThreshold     = 0.8
	DefaultTermThreshold = 0.8
)

// DefaultAppSettings returns settings with sensible defaults.
// The local embedder and sqlite index work without any setup.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Grouping: GroupingSettings{
			TopK:          DefaultTopK,
			Threshold:     DefaultThreshold,
			TermThreshold: DefaultTermThreshold,
		},
		Embedding: EmbeddingSettings{
			Provider:     AIProviderLocal,
			Model:        DefaultEmbeddingModels()[AIProviderLocal],
			Dimensions:   256,
			InitAttempts: 3,
		},
		VectorIndex: VectorIndexSettings{
			Backend:    IndexBackendSQLite,
			QdrantPort: 6334,
			Collection: "docmerge",
		},
		LLM: LLMSettings{
			Provider: LLMProviderNone,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns all LLM providers, including none.
func AllLLMProviders() []LLMProvider {
	return []LLMProvider{
		LLMProviderNone,
		LLMProviderOllama,
		LLMProviderOpenAI,
		LLMProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[LLMProvider]string {
	return map[LLMProvider]string{
		LLMProviderOllama:    "llama3.2",
		LLMProviderOpenAI:    "gpt-4o-mini",
		LLMProviderAnthropic: "claude-3-5-haiku-latest",
	}
}

// AllIndexBackends returns all available index backends.
func AllIndexBackends() []IndexBackend {
	return []IndexBackend{
		IndexBackendMemory,
		IndexBackendSQLite,
		IndexBackendQdrant,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "hashing-v1",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
