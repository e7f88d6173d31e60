package driving

import (
	"context"

	"github.com/custodia-labs/docmerge/internal/core/domain"
)

// DraftService proposes merged text for a group of near-duplicates.
type DraftService interface {
	// DraftMerge asks the configured model to merge the unresolved members of
	// a group. It does not change the index.
	DraftMerge(ctx context.Context, groupID string) (*domain.Draft, error)
}
