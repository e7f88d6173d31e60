package driving

import (
	"context"

	"github.com/custodia-labs/docmerge/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save validates and persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates one setting by its dotted key (e.g. "grouping.threshold").
	Set(key, value string) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks the current settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error
}

// SessionService controls the lifetime of the authoring session.
type SessionService interface {
	// Reset clears the vector index and every destination document.
	Reset(ctx context.Context) error

	// End clears the session's state and releases it. Every later call fails
	// with domain.ErrNoActiveSession.
	End(ctx context.Context) error

	// Close releases the session without clearing persisted state.
	Close() error

	// Active returns true until End is called.
	Active() bool
}
