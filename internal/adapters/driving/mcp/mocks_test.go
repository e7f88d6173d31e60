package mcp

import (
	"context"

	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driving"
)

// mockReviewService implements the review calls the server makes.
// Other methods panic through the nil embedded interface.
type mockReviewService struct {
	driving.ReviewService

	groups      []domain.SimilarityGroup
	termGroups  []domain.TermGroup
	unique      []domain.SourceSection
	uniqueTerms []domain.GlossaryTerm
	canonical   []domain.GlossaryTerm
	err         error

	resolved []string
	popped   []string
}

func (m *mockReviewService) GetSimilarityGroups(_ context.Context) ([]domain.SimilarityGroup, error) {
	return m.groups, m.err
}

func (m *mockReviewService) GetTermGroups(_ context.Context) ([]domain.TermGroup, error) {
	return m.termGroups, m.err
}

func (m *mockReviewService) GetUniqueSections(_ context.Context) ([]domain.SourceSection, error) {
	return m.unique, m.err
}

func (m *mockReviewService) GetUniqueTerms(_ context.Context) ([]domain.GlossaryTerm, error) {
	return m.uniqueTerms, m.err
}

func (m *mockReviewService) MarkManyResolved(_ context.Context, ids []string) error {
	if m.err != nil {
		return m.err
	}
	m.resolved = append(m.resolved, ids...)
	return nil
}

func (m *mockReviewService) PopFromGroup(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.popped = append(m.popped, id)
	return nil
}

func (m *mockReviewService) CanonicalTerms(_ context.Context) ([]domain.GlossaryTerm, error) {
	return m.canonical, m.err
}

// mockAssemblyService implements the assembly calls the server makes.
type mockAssemblyService struct {
	driving.AssemblyService

	destinations []domain.DestinationDocument
	outline      []domain.OutlineEntry
	published    string
	err          error

	lastURI string
}

func (m *mockAssemblyService) ListDestinations(_ context.Context) ([]domain.DestinationDocument, error) {
	return m.destinations, m.err
}

func (m *mockAssemblyService) Outline(_ context.Context, uri string) ([]domain.OutlineEntry, error) {
	m.lastURI = uri
	return m.outline, m.err
}

func (m *mockAssemblyService) Publish(_ context.Context, uri string) (string, error) {
	m.lastURI = uri
	return m.published, m.err
}

// mockDraftService returns a fixed draft or error.
type mockDraftService struct {
	draft *domain.Draft
	err   error
	asked string
}

func (m *mockDraftService) DraftMerge(_ context.Context, groupID string) (*domain.Draft, error) {
	m.asked = groupID
	return m.draft, m.err
}
