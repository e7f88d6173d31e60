package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driven"
	"github.com/custodia-labs/docmerge/internal/core/ports/driving"
	"github.com/custodia-labs/docmerge/internal/logger"
)

// Ensure ReviewService implements the interface.
var _ driving.ReviewService = (*ReviewService)(nil)

// ReviewService tracks each item through its lifecycle and derives the
// grouped and unique views.
//
// Items start active. Resolving an item hides it from every view; popping
// an item removes it from its group without resolving it. Neither transition
// is reversible.
type ReviewService struct {
	session  *Session
	embedder driven.EmbeddingService
}

// NewReviewService creates a review service.
// The embedder is only needed by UpdateTerm and may be nil.
func NewReviewService(session *Session, embedder driven.EmbeddingService) *ReviewService {
	return &ReviewService{
		session:  session,
		embedder: embedder,
	}
}

// partition holds the unresolved items of one content type split by group.
type partition struct {
	groupOrder []string
	groups     map[string][]domain.IndexItem
	ungrouped  []domain.IndexItem
	// position preserves listing order when merging decayed groups back.
	position map[string]int
}

func (s *ReviewService) partition(ctx context.Context, ct domain.ContentType) (*partition, error) {
	index, err := s.session.Index()
	if err != nil {
		return nil, err
	}
	items, err := index.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	p := &partition{
		groups:   make(map[string][]domain.IndexItem),
		position: make(map[string]int, len(items)),
	}
	for i, item := range items {
		if item.Metadata.ContentType != ct || item.Metadata.IsResolved {
			continue
		}
		p.position[item.ID] = i
		if !item.HasGroup() {
			p.ungrouped = append(p.ungrouped, item)
			continue
		}
		gid := item.Metadata.GroupID
		if _, ok := p.groups[gid]; !ok {
			p.groupOrder = append(p.groupOrder, gid)
		}
		p.groups[gid] = append(p.groups[gid], item)
	}
	return p, nil
}

// multi returns groups with at least two members in first-seen order.
func (p *partition) multi() [][]domain.IndexItem {
	out := make([][]domain.IndexItem, 0, len(p.groupOrder))
	for _, gid := range p.groupOrder {
		if members := p.groups[gid]; len(members) >= 2 {
			out = append(out, members)
		}
	}
	return out
}

// unique returns ungrouped items plus sole survivors of decayed groups, in listing order.
func (p *partition) unique() []domain.IndexItem {
	out := append([]domain.IndexItem(nil), p.ungrouped...)
	for _, gid := range p.groupOrder {
		if members := p.groups[gid]; len(members) == 1 {
			out = append(out, members[0])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return p.position[out[i].ID] < p.position[out[j].ID]
	})
	return out
}

// GetSimilarityGroups returns unresolved section groups with at least two members.
func (s *ReviewService) GetSimilarityGroups(ctx context.Context) ([]domain.SimilarityGroup, error) {
	p, err := s.partition(ctx, domain.ContentTypeSection)
	if err != nil {
		return nil, err
	}
	groups := make([]domain.SimilarityGroup, 0)
	for _, members := range p.multi() {
		g := domain.SimilarityGroup{ID: members[0].Metadata.GroupID}
		for _, m := range members {
			g.Members = append(g.Members, domain.SectionFromItem(m))
		}
		if !g.IsResolved() {
			groups = append(groups, g)
		}
	}
	return groups, nil
}

// GetUniqueSections returns unresolved sections with no group partner.
func (s *ReviewService) GetUniqueSections(ctx context.Context) ([]domain.SourceSection, error) {
	p, err := s.partition(ctx, domain.ContentTypeSection)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SourceSection, 0)
	for _, item := range p.unique() {
		out = append(out, domain.SectionFromItem(item))
	}
	return out, nil
}

// GetTermGroups returns unresolved term groups with at least two members.
func (s *ReviewService) GetTermGroups(ctx context.Context) ([]domain.TermGroup, error) {
	p, err := s.partition(ctx, domain.ContentTypeTerm)
	if err != nil {
		return nil, err
	}
	groups := make([]domain.TermGroup, 0)
	for _, members := range p.multi() {
		g := domain.TermGroup{ID: members[0].Metadata.GroupID}
		for _, m := range members {
			g.Members = append(g.Members, domain.TermFromItem(m))
		}
		if !g.IsResolved() {
			groups = append(groups, g)
		}
	}
	return groups, nil
}

// GetUniqueTerms returns unresolved terms with no group partner.
func (s *ReviewService) GetUniqueTerms(ctx context.Context) ([]domain.GlossaryTerm, error) {
	p, err := s.partition(ctx, domain.ContentTypeTerm)
	if err != nil {
		return nil, err
	}
	out := make([]domain.GlossaryTerm, 0)
	for _, item := range p.unique() {
		out = append(out, domain.TermFromItem(item))
	}
	return out, nil
}

// MarkResolved marks an item resolved. Unknown ids are logged and ignored.
func (s *ReviewService) MarkResolved(ctx context.Context, id string) error {
	return s.patch(ctx, "resolve", id, domain.MetadataPatch{IsResolved: domain.BoolPtr(true)})
}

// MarkManyResolved resolves each id independently. The first failure aborts
// the rest of the batch; ids resolved before it stay resolved.
func (s *ReviewService) MarkManyResolved(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if err := s.MarkResolved(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// PopFromGroup clears an item's group and flags it popped.
func (s *ReviewService) PopFromGroup(ctx context.Context, id string) error {
	return s.patch(ctx, "pop", id, domain.MetadataPatch{
		IsPopped: domain.BoolPtr(true),
		GroupID:  domain.StringPtr(""),
	})
}

func (s *ReviewService) patch(ctx context.Context, op, id string, patch domain.MetadataPatch) error {
	index, err := s.session.Index()
	if err != nil {
		return err
	}
	err = index.UpdateMetadata(ctx, id, patch)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warn("%s: item %s not found", op, id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, id, err)
	}
	logger.Debug("%s: %s", op, id)
	return nil
}

// UpdateTerm replaces a term's text and definition and re-embeds it.
// The term keeps its group and lifecycle flags.
func (s *ReviewService) UpdateTerm(ctx context.Context, id, term, definition string) error {
	term = strings.TrimSpace(term)
	definition = strings.TrimSpace(definition)
	if term == "" || definition == "" {
		return fmt.Errorf("%w: term and definition are required", domain.ErrInvalidInput)
	}
	index, err := s.session.Index()
	if err != nil {
		return err
	}
	item, err := index.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warn("update term: item %s not found", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get term %s: %w", id, err)
	}
	if item.Metadata.ContentType != domain.ContentTypeTerm || item.Metadata.Term == nil {
		return fmt.Errorf("%w: %s is not a term", domain.ErrInvalidInput, id)
	}
	if s.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}

	tm := *item.Metadata.Term
	tm.Term = term
	tm.Definition = definition
	tm.Confidence = 1.0
	updated := item.Clone()
	updated.Metadata = domain.MetadataPatch{Term: &tm}.Apply(item.Metadata)

	vector, err := s.embedder.Embed(ctx, updated.Metadata.Content)
	if err != nil {
		return fmt.Errorf("embed term %s: %w", id, err)
	}
	updated.Vector = vector
	if err := index.Upsert(ctx, updated); err != nil {
		return fmt.Errorf("update term %s: %w", id, err)
	}
	return nil
}

// RejectTerm removes a term from the index.
func (s *ReviewService) RejectTerm(ctx context.Context, id string) error {
	index, err := s.session.Index()
	if err != nil {
		return err
	}
	item, err := index.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warn("reject term: item %s not found", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get term %s: %w", id, err)
	}
	if item.Metadata.ContentType != domain.ContentTypeTerm {
		return fmt.Errorf("%w: %s is not a term", domain.ErrInvalidInput, id)
	}
	if err := index.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete term %s: %w", id, err)
	}
	return nil
}

// CanonicalTerms returns resolved terms, one per case-insensitive term,
// sorted by term. The most confident definition wins.
func (s *ReviewService) CanonicalTerms(ctx context.Context) ([]domain.GlossaryTerm, error) {
	index, err := s.session.Index()
	if err != nil {
		return nil, err
	}
	items, err := index.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	byKey := make(map[string]domain.GlossaryTerm)
	for _, item := range items {
		if item.Metadata.ContentType != domain.ContentTypeTerm || !item.Metadata.IsResolved {
			continue
		}
		t := domain.TermFromItem(item)
		key := strings.ToLower(t.Term)
		if prev, ok := byKey[key]; !ok || t.Confidence > prev.Confidence {
			byKey[key] = t
		}
	}

	out := make([]domain.GlossaryTerm, 0, len(byKey))
	for _, t := range byKey {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Term) < strings.ToLower(out[j].Term)
	})
	return out, nil
}

// membersOf returns the unresolved items carrying groupID.
func (s *ReviewService) membersOf(ctx context.Context, groupID string) ([]domain.IndexItem, error) {
	if groupID == "" {
		return nil, fmt.Errorf("%w: group id is required", domain.ErrInvalidInput)
	}
	index, err := s.session.Index()
	if err != nil {
		return nil, err
	}
	items, err := index.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	var out []domain.IndexItem
	for _, item := range items {
		if item.Metadata.GroupID == groupID && !item.Metadata.IsResolved {
			out = append(out, item)
		}
	}
	return out, nil
}
