package driven

import (
	"context"

	"github.com/custodia-labs/docmerge/internal/core/domain"
)

// VectorIndex stores embedded items and answers similarity queries.
// Implementations own the persistence format.
type VectorIndex interface {
	// Insert adds a new item. Returns domain.ErrAlreadyExists if the ID is taken.
	Insert(ctx context.Context, item domain.IndexItem) error

	// Upsert adds or replaces an item.
	Upsert(ctx context.Context, item domain.IndexItem) error

	// Query returns up to topK nearest items, sorted by score descending.
	// An empty contentType matches every item.
	Query(ctx context.Context, vector []float32, topK int, contentType domain.ContentType) ([]VectorHit, error)

	// Get retrieves an item. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.IndexItem, error)

	// UpdateMetadata applies a partial update. Returns domain.ErrNotFound if absent.
	UpdateMetadata(ctx context.Context, id string, patch domain.MetadataPatch) error

	// ListAll returns every item in insertion order.
	ListAll(ctx context.Context) ([]domain.IndexItem, error)

	// Delete removes an item. Deleting an absent item is not an error.
	Delete(ctx context.Context, id string) error

	// Reset removes every item.
	Reset(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Item is the matched item.
	Item domain.IndexItem

	// Score is the cosine similarity (higher is closer).
	Score float64
}
