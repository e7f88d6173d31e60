package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driving"
)

// MockReviewService implements the review calls the app makes.
type MockReviewService struct {
	driving.ReviewService

	Groups []domain.SimilarityGroup
	Unique []domain.SourceSection
	Err    error
}

func (m *MockReviewService) GetSimilarityGroups(_ context.Context) ([]domain.SimilarityGroup, error) {
	return m.Groups, m.Err
}

func (m *MockReviewService) GetUniqueSections(_ context.Context) ([]domain.SourceSection, error) {
	return m.Unique, m.Err
}

func (m *MockReviewService) GetTermGroups(_ context.Context) ([]domain.TermGroup, error) {
	return nil, m.Err
}

func (m *MockReviewService) GetUniqueTerms(_ context.Context) ([]domain.GlossaryTerm, error) {
	return nil, m.Err
}

func (m *MockReviewService) MarkManyResolved(_ context.Context, _ []string) error {
	return m.Err
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name     string
		ports    *Ports
		expected error
	}{
		{"nil ports", nil, ErrInvalidPorts},
		{"missing review", &Ports{}, ErrMissingReviewService},
		{"valid", &Ports{Review: &MockReviewService{}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.expected)
			}
		})
	}
}
