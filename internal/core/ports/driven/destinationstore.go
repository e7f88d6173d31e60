package driven

import (
	"context"

	"github.com/custodia-labs/docmerge/internal/core/domain"
)

// DestinationStore persists destination documents for the active session.
type DestinationStore interface {
	// Save creates or replaces a document.
	Save(ctx context.Context, doc domain.DestinationDocument) error

	// Get retrieves a document. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, uri string) (*domain.DestinationDocument, error)

	// List returns every document ordered by URI.
	List(ctx context.Context) ([]domain.DestinationDocument, error)

	// Delete removes a document. Deleting an absent document is not an error.
	Delete(ctx context.Context, uri string) error

	// Reset removes every document.
	Reset(ctx context.Context) error
}
