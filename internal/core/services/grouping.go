package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driven"
	"github.com/custodia-labs/docmerge/internal/logger"
)

// GroupingEngine clusters embedded items into similarity groups.
//
// Clustering is online, single-pass, greedy and non-transitive. An item that
// already has a group is never re-evaluated, and groups are never merged:
// when a seed's neighbours belong to different existing groups the first one
// (by score) wins and the others are left where they are.
type GroupingEngine struct {
	index     driven.VectorIndex
	topK      int
	threshold float64
	newID     func() string
}

// NewGroupingEngine creates a grouping engine over index.
func NewGroupingEngine(index driven.VectorIndex, topK int, threshold float64) *GroupingEngine {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	if threshold <= 0 {
		threshold = domain.DefaultThreshold
	}
	return &GroupingEngine{
		index:     index,
		topK:      topK,
		threshold: threshold,
		newID:     newGroupID,
	}
}

// GroupSimilarItems assigns group ids to the given items in input order.
// Unknown ids are logged and skipped. Index failures abort the pass.
func (g *GroupingEngine) GroupSimilarItems(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if err := g.groupOne(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (g *GroupingEngine) groupOne(ctx context.Context, id string) error {
	seed, err := g.index.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warn("grouping: item %s not found", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get item %s: %w", id, err)
	}
	if seed.HasGroup() {
		return nil
	}

	hits, err := g.index.Query(ctx, seed.Vector, g.topK, seed.Metadata.ContentType)
	if err != nil {
		return fmt.Errorf("query neighbours of %s: %w", id, err)
	}

	candidates := make([]domain.IndexItem, 0, len(hits))
	for _, hit := range hits {
		if hit.Score >= g.threshold && hit.Item.ID != id {
			candidates = append(candidates, hit.Item)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	groupID := ""
	for _, c := range candidates {
		if c.HasGroup() {
			groupID = c.Metadata.GroupID
			break
		}
	}
	if groupID == "" {
		groupID = g.newID()
	}

	if err := g.assign(ctx, id, groupID); err != nil {
		return err
	}
	for _, c := range candidates {
		if c.HasGroup() {
			continue
		}
		if err := g.assign(ctx, c.ID, groupID); err != nil {
			return err
		}
	}
	logger.Debug("grouping: %s joined group %s", id, groupID)
	return nil
}

func (g *GroupingEngine) assign(ctx context.Context, id, groupID string) error {
	err := g.index.UpdateMetadata(ctx, id, domain.MetadataPatch{GroupID: &groupID})
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warn("grouping: item %s vanished before assignment", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("assign %s to group %s: %w", id, groupID, err)
	}
	return nil
}
