package driven

import "github.com/custodia-labs/docmerge/internal/core/domain"

// AIConfigValidator checks that an embedding provider answers before its
// settings are saved.
type AIConfigValidator interface {
	// ValidateEmbedding returns nil for a reachable provider and for the
	// local embedder, which needs no network.
	ValidateEmbedding(config *domain.EmbeddingSettings) error
}
