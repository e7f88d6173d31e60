package driven

import "context"

// EmbeddingService turns section and term text into vectors for grouping.
// The vectors it returns go into a VectorIndex of the same dimension.
type EmbeddingService interface {
	// Embed returns the vector for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates one embedding per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is fixed by the model.
	Dimensions() int

	ModelName() string

	// Ping fails when the backing model cannot be reached.
	Ping(ctx context.Context) error

	Close() error
}
