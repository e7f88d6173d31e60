package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driven"
	"github.com/custodia-labs/docmerge/internal/core/ports/driving"
	"github.com/custodia-labs/docmerge/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService turns source documents into grouped index items.
type IngestService struct {
	session  *Session
	markdown driven.MarkdownTree
	embedder driven.EmbeddingService
	grouping domain.GroupingSettings
}

// NewIngestService creates an ingest service.
func NewIngestService(
	session *Session,
	markdown driven.MarkdownTree,
	embedder driven.EmbeddingService,
	grouping domain.GroupingSettings,
) *IngestService {
	return &IngestService{
		session:  session,
		markdown: markdown,
		embedder: embedder,
		grouping: grouping,
	}
}

// IngestSource parses, segments, embeds and groups a source document, then
// extracts, embeds and groups its glossary terms. Items the new text no
// longer produces are deleted; see carryOver for what survives. Cancellation is honoured up to the first index
// write; once writing starts the source is ingested completely.
func (s *IngestService) IngestSource(ctx context.Context, sourceID, text string) (*driving.IngestResult, error) {
	logger.Section("Ingest " + sourceID)

	if strings.TrimSpace(sourceID) == "" {
		return nil, fmt.Errorf("%w: source id is required", domain.ErrInvalidInput)
	}
	index, err := s.session.Index()
	if err != nil {
		return nil, err
	}
	if s.markdown == nil {
		return nil, domain.ErrMarkdownUnavailable
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	tree, err := s.markdown.Parse(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", sourceID, err)
	}
	tree = WithPathsAssigned(tree)

	units := Segment(tree, sourceID)
	sections, err := s.sectionItems(units)
	if err != nil {
		return nil, err
	}
	terms := termItems(ExtractTerms(units))
	logger.Debug("%d units, %d indexed sections, %d terms", len(units), len(sections), len(terms))

	if err := s.embed(ctx, sections); err != nil {
		return nil, fmt.Errorf("embed sections of %s: %w", sourceID, err)
	}
	if err := s.embed(ctx, terms); err != nil {
		return nil, fmt.Errorf("embed terms of %s: %w", sourceID, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	writeCtx := context.WithoutCancel(ctx)

	kept, err := carryOver(writeCtx, index, sourceID, sections, terms)
	if err != nil {
		return nil, err
	}
	sectionIDs, err := upsertAll(writeCtx, index, sections)
	if err != nil {
		return nil, err
	}
	if err := NewGroupingEngine(index, s.grouping.TopK, s.grouping.Threshold).
		GroupSimilarItems(writeCtx, without(sectionIDs, kept)); err != nil {
		return nil, fmt.Errorf("group sections: %w", err)
	}
	termIDs, err := upsertAll(writeCtx, index, terms)
	if err != nil {
		return nil, err
	}
	if err := NewGroupingEngine(index, s.grouping.TopK, s.grouping.TermThreshold).
		GroupSimilarItems(writeCtx, without(termIDs, kept)); err != nil {
		return nil, fmt.Errorf("group terms: %w", err)
	}

	logger.Info("ingested %s: %d sections, %d terms", sourceID, len(sections), len(terms))
	return &driving.IngestResult{
		SourceID: sourceID,
		Sections: len(sections),
		Terms:    len(terms),
	}, nil
}

// RemoveSource deletes every item that came from a source.
func (s *IngestService) RemoveSource(ctx context.Context, sourceID string) (int, error) {
	index, err := s.session.Index()
	if err != nil {
		return 0, err
	}
	return removeSource(ctx, index, sourceID)
}

// sectionItems builds index items for units that carry text. Each item's
// content is the unit rendered back to markdown so it can be re-inserted.
func (s *IngestService) sectionItems(units []domain.ContentUnit) ([]domain.IndexItem, error) {
	items := make([]domain.IndexItem, 0, len(units))
	for _, u := range units {
		if strings.TrimSpace(u.Content) == "" {
			continue
		}
		md, err := s.markdown.Serialize(domain.NewRoot(u.Node))
		if err != nil {
			return nil, fmt.Errorf("render unit %s: %w", u.ID, err)
		}
		items = append(items, domain.IndexItem{
			ID: u.ID,
			Metadata: domain.ItemMetadata{
				ContentType: domain.ContentTypeSection,
				Content:     strings.TrimSpace(md),
				SourceID:    u.Metadata.SourceID,
				Section: &domain.SectionMetadata{
					BlockType:     u.Type,
					Text:          u.Content,
					ParentHeading: u.Metadata.ParentHeading,
					HeadingDepth:  u.Metadata.HeadingDepth,
					Path:          u.Metadata.Path,
					StartLine:     u.Metadata.StartLine,
					EndLine:       u.Metadata.EndLine,
				},
			},
		})
	}
	return items, nil
}

func termItems(terms []domain.GlossaryTerm) []domain.IndexItem {
	items := make([]domain.IndexItem, 0, len(terms))
	for _, t := range terms {
		items = append(items, domain.IndexItem{
			ID: t.ID,
			Metadata: domain.ItemMetadata{
				ContentType: domain.ContentTypeTerm,
				Content:     t.Content(),
				SourceID:    t.SourceID,
				Term: &domain.TermMetadata{
					Term:          t.Term,
					Definition:    t.Definition,
					Confidence:    t.Confidence,
					Pattern:       t.Pattern,
					ParentHeading: t.ParentHeading,
				},
			},
		})
	}
	return items
}

// embed fills in item vectors with one batch call.
func (s *IngestService) embed(ctx context.Context, items []domain.IndexItem) error {
	if len(items) == 0 {
		return nil
	}
	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = embeddingText(item)
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(items) {
		return fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrEmbeddingUnavailable, len(vectors), len(items))
	}
	for i := range items {
		items[i].Vector = vectors[i]
	}
	return nil
}

// embeddingText prefers the plain text of a section over its markdown.
func embeddingText(item domain.IndexItem) string {
	if sec := item.Metadata.Section; sec != nil && sec.Text != "" {
		return sec.Text
	}
	return item.Metadata.Content
}

func upsertAll(ctx context.Context, index driven.VectorIndex, items []domain.IndexItem) ([]string, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if err := index.Upsert(ctx, item); err != nil {
			return nil, fmt.Errorf("store %s: %w", item.ID, err)
		}
		ids = append(ids, item.ID)
	}
	return ids, nil
}

// carryOver deletes the source's stored items that the new parse no longer
// produces and copies review state onto the new items that replace them.
// A unit keeps its state only while its content is unchanged. A resolved
// term is the author's canonical version and is kept as stored. It returns
// the ids that kept their state; those are not grouped again.
func carryOver(
	ctx context.Context, index driven.VectorIndex, sourceID string, next ...[]domain.IndexItem,
) (map[string]bool, error) {
	fresh := make(map[string]*domain.IndexItem)
	for _, items := range next {
		for i := range items {
			fresh[items[i].ID] = &items[i]
		}
	}

	stored, err := index.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	removed, kept := 0, make(map[string]bool)
	for _, old := range stored {
		if old.Metadata.SourceID != sourceID {
			continue
		}
		item, ok := fresh[old.ID]
		if !ok {
			if err := index.Delete(ctx, old.ID); err != nil {
				return nil, fmt.Errorf("delete %s: %w", old.ID, err)
			}
			removed++
			continue
		}
		switch {
		case old.Metadata.ContentType == domain.ContentTypeTerm && old.Metadata.IsResolved:
			*item = old.Clone()
			kept[old.ID] = true
		case old.Metadata.Content == item.Metadata.Content:
			item.Metadata.IsResolved = old.Metadata.IsResolved
			item.Metadata.IsPopped = old.Metadata.IsPopped
			item.Metadata.GroupID = old.Metadata.GroupID
			kept[old.ID] = true
		}
	}
	logger.Debug("%s: %d items dropped, %d keep their review state", sourceID, removed, len(kept))
	return kept, nil
}

func without(ids []string, drop map[string]bool) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !drop[id] {
			out = append(out, id)
		}
	}
	return out
}

func removeSource(ctx context.Context, index driven.VectorIndex, sourceID string) (int, error) {
	items, err := index.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list items: %w", err)
	}
	removed := 0
	for _, item := range items {
		if item.Metadata.SourceID != sourceID {
			continue
		}
		if err := index.Delete(ctx, item.ID); err != nil {
			return removed, fmt.Errorf("delete %s: %w", item.ID, err)
		}
		removed++
	}
	if removed > 0 {
		logger.Debug("removed %d items from %s", removed, sourceID)
	}
	return removed, nil
}
