package driving

import (
	"context"

	"github.com/custodia-labs/docmerge/internal/core/domain"
)

// ReviewService exposes duplicate groups and the resolution lifecycle.
type ReviewService interface {
	// GetSimilarityGroups returns unresolved section groups with at least two members.
	GetSimilarityGroups(ctx context.Context) ([]domain.SimilarityGroup, error)

	// GetUniqueSections returns unresolved sections that have no group partner.
	GetUniqueSections(ctx context.Context) ([]domain.SourceSection, error)

	// GetTermGroups returns unresolved term groups with at least two members.
	GetTermGroups(ctx context.Context) ([]domain.TermGroup, error)

	// GetUniqueTerms returns unresolved terms that have no group partner.
	GetUniqueTerms(ctx context.Context) ([]domain.GlossaryTerm, error)

	// MarkResolved marks an item resolved. Unknown ids are logged and ignored.
	MarkResolved(ctx context.Context, id string) error

	// MarkManyResolved resolves each id in turn, stopping at the first error.
	MarkManyResolved(ctx context.Context, ids []string) error

	// PopFromGroup removes an item from its group without resolving it.
	PopFromGroup(ctx context.Context, id string) error

	// UpdateTerm replaces a term's text and definition and re-embeds it.
	UpdateTerm(ctx context.Context, id, term, definition string) error

	// RejectTerm removes a term from the index.
	RejectTerm(ctx context.Context, id string) error

	// CanonicalTerms returns resolved terms, sorted by term.
	CanonicalTerms(ctx context.Context) ([]domain.GlossaryTerm, error)
}
