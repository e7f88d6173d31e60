package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driven"
)

// Ensure DestinationStore implements the interface.
var _ driven.DestinationStore = (*DestinationStore)(nil)

// DestinationStore is an in-memory implementation of driven.DestinationStore.
// Documents are deep-copied on the way in and out.
type DestinationStore struct {
	mu   sync.RWMutex
	docs map[string]domain.DestinationDocument
}

// NewDestinationStore creates a new in-memory destination store.
func NewDestinationStore() *DestinationStore {
	return &DestinationStore{
		docs: make(map[string]domain.DestinationDocument),
	}
}

// Save creates or replaces a document.
func (s *DestinationStore) Save(_ context.Context, doc domain.DestinationDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.URI] = doc.Clone()
	return nil
}

// Get retrieves a document by URI.
func (s *DestinationStore) Get(_ context.Context, uri string) (*domain.DestinationDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := doc.Clone()
	return &out, nil
}

// List returns every document ordered by URI.
func (s *DestinationStore) List(_ context.Context) ([]domain.DestinationDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.DestinationDocument, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out, nil
}

// Delete removes a document.
func (s *DestinationStore) Delete(_ context.Context, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
	return nil
}

// Reset removes every document.
func (s *DestinationStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]domain.DestinationDocument)
	return nil
}
