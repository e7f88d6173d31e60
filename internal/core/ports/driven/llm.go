package driven

import "context"

// LLMService generates text from a prompt. It is optional: without one,
// merge drafting reports domain.ErrModelUnavailable.
//
// Implementations may include:
//   - Ollama (llama3.2, mistral)
//   - OpenAI (gpt-4o-mini)
//   - Anthropic (claude models)
type LLMService interface {
	// Generate returns the model's completion for prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions tunes a single completion.
type GenerateOptions struct {
	// MaxTokens caps the completion length. Zero uses the adapter default.
	MaxTokens int

	// Temperature controls randomness (0.0-1.0).
	Temperature float64
}
