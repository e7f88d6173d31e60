package ai

import (
	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator adapts ValidateEmbeddingConfig to the driven port so the
// settings service can check a provider before saving it.
type ConfigValidator struct{}

func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(config)
}
