package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory implementation of driven.VectorIndex.
// Queries are brute-force cosine similarity over every stored item.
type VectorIndex struct {
	mu    sync.RWMutex
	items map[string]domain.IndexItem
	order []string
}

// NewVectorIndex creates a new in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		items: make(map[string]domain.IndexItem),
	}
}

// Insert adds a new item.
func (v *VectorIndex) Insert(_ context.Context, item domain.IndexItem) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.items[item.ID]; ok {
		return fmt.Errorf("item %s: %w", item.ID, domain.ErrAlreadyExists)
	}
	v.items[item.ID] = item.Clone()
	v.order = append(v.order, item.ID)
	return nil
}

// Upsert adds or replaces an item. A replaced item keeps its position.
func (v *VectorIndex) Upsert(_ context.Context, item domain.IndexItem) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.items[item.ID]; !ok {
		v.order = append(v.order, item.ID)
	}
	v.items[item.ID] = item.Clone()
	return nil
}

// Query returns up to topK items closest to vector.
// Equal scores keep insertion order.
func (v *VectorIndex) Query(
	ctx context.Context,
	vector []float32,
	topK int,
	contentType domain.ContentType,
) ([]driven.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, nil
	}

	v.mu.RLock()
	hits := make([]driven.VectorHit, 0, len(v.order))
	for _, id := range v.order {
		item := v.items[id]
		if contentType != "" && item.Metadata.ContentType != contentType {
			continue
		}
		hits = append(hits, driven.VectorHit{
			Item:  item.Clone(),
			Score: domain.CosineSimilarity(vector, item.Vector),
		})
	}
	v.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Get retrieves an item by ID.
func (v *VectorIndex) Get(_ context.Context, id string) (*domain.IndexItem, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	item, ok := v.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := item.Clone()
	return &out, nil
}

// UpdateMetadata applies a partial metadata update.
func (v *VectorIndex) UpdateMetadata(_ context.Context, id string, patch domain.MetadataPatch) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	item, ok := v.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	item.Metadata = patch.Apply(item.Metadata)
	v.items[id] = item
	return nil
}

// ListAll returns every item in insertion order.
func (v *VectorIndex) ListAll(_ context.Context) ([]domain.IndexItem, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]domain.IndexItem, 0, len(v.order))
	for _, id := range v.order {
		out = append(out, v.items[id].Clone())
	}
	return out, nil
}

// Delete removes an item.
func (v *VectorIndex) Delete(_ context.Context, id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.items[id]; !ok {
		return nil
	}
	delete(v.items, id)
	for i, oid := range v.order {
		if oid == id {
			v.order = append(v.order[:i], v.order[i+1:]...)
			break
		}
	}
	return nil
}

// Reset removes every item.
func (v *VectorIndex) Reset(_ context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.items = make(map[string]domain.IndexItem)
	v.order = nil
	return nil
}

// Close releases resources.
func (v *VectorIndex) Close() error {
	return nil
}
