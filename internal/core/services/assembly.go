package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driven"
	"github.com/custodia-labs/docmerge/internal/core/ports/driving"
	"github.com/custodia-labs/docmerge/internal/logger"
)

// Ensure AssemblyService implements the interface.
var _ driving.AssemblyService = (*AssemblyService)(nil)

// GlossaryHeading titles the section appended by Publish.
const GlossaryHeading = "Glossary"

// AssemblyService builds destination documents from reviewed content.
// Every edit replaces the stored tree with a new, re-stamped tree.
type AssemblyService struct {
	session  *Session
	markdown driven.MarkdownTree
	review   *ReviewService
	now      func() time.Time
}

// NewAssemblyService creates an assembly service.
func NewAssemblyService(session *Session, markdown driven.MarkdownTree, review *ReviewService) *AssemblyService {
	return &AssemblyService{
		session:  session,
		markdown: markdown,
		review:   review,
		now:      time.Now,
	}
}

// CreateDestination starts an empty, unsaved destination document.
func (s *AssemblyService) CreateDestination(ctx context.Context, uri, title string) (*domain.DestinationDocument, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, fmt.Errorf("%w: destination uri is required", domain.ErrInvalidInput)
	}
	store, err := s.session.Destinations()
	if err != nil {
		return nil, err
	}
	if _, err := store.Get(ctx, uri); err == nil {
		return nil, fmt.Errorf("%w: destination %s", domain.ErrAlreadyExists, uri)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get destination %s: %w", uri, err)
	}

	root := domain.NewRoot()
	if title = strings.TrimSpace(title); title != "" {
		root.Children = append(root.Children, domain.NewHeading(1, title))
	}
	now := s.now()
	doc := domain.DestinationDocument{
		URI:       uri,
		Title:     title,
		Unsaved:   true,
		Tree:      WithPathsAssigned(root),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save destination %s: %w", uri, err)
	}
	logger.Info("created destination %s", uri)
	return &doc, nil
}

// GetDestination retrieves a destination document.
func (s *AssemblyService) GetDestination(ctx context.Context, uri string) (*domain.DestinationDocument, error) {
	store, err := s.session.Destinations()
	if err != nil {
		return nil, err
	}
	doc, err := store.Get(ctx, uri)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrDestinationNotFound, uri)
	}
	if err != nil {
		return nil, fmt.Errorf("get destination %s: %w", uri, err)
	}
	return doc, nil
}

// ListDestinations returns every destination in the session.
func (s *AssemblyService) ListDestinations(ctx context.Context) ([]domain.DestinationDocument, error) {
	store, err := s.session.Destinations()
	if err != nil {
		return nil, err
	}
	return store.List(ctx)
}

// RemoveDestination discards a destination document.
func (s *AssemblyService) RemoveDestination(ctx context.Context, uri string) error {
	if _, err := s.GetDestination(ctx, uri); err != nil {
		return err
	}
	store, err := s.session.Destinations()
	if err != nil {
		return err
	}
	return store.Delete(ctx, uri)
}

// Outline walks the top-level blocks of a destination. Headings set the
// context for the blocks after them and are not emitted; every other
// non-metadata block is emitted with its nested blocks as children.
func (s *AssemblyService) Outline(ctx context.Context, uri string) ([]domain.OutlineEntry, error) {
	doc, err := s.GetDestination(ctx, uri)
	if err != nil {
		return nil, err
	}
	return OutlineOf(doc.Tree), nil
}

// OutlineOf builds the outline of a stamped tree.
func OutlineOf(tree *domain.Node) []domain.OutlineEntry {
	entries := make([]domain.OutlineEntry, 0)
	if tree == nil {
		return entries
	}
	heading := ""
	for i, child := range tree.Children {
		if child == nil || child.Type.IsMetadata() {
			continue
		}
		if child.Type == domain.NodeHeading {
			heading = child.Text()
			continue
		}
		entries = append(entries, outlineEntry(child, domain.Path{i}, heading))
	}
	return entries
}

func outlineEntry(n *domain.Node, walked domain.Path, heading string) domain.OutlineEntry {
	path := walked
	if stamped, ok := n.Path(); ok {
		path = stamped
	}
	bt, ok := domain.BlockTypeOf(n.Type)
	if !ok {
		bt = domain.BlockRawMarkup
	}
	entry := domain.OutlineEntry{
		Path:          path,
		Type:          bt,
		Content:       n.Text(),
		ParentHeading: heading,
	}
	entry.Children = nestedEntries(n, path, heading)
	return entry
}

// nestedEntries collects the blocks below n, looking through containers
// such as list items that are not blocks themselves.
func nestedEntries(n *domain.Node, path domain.Path, heading string) []domain.OutlineEntry {
	var out []domain.OutlineEntry
	for i, child := range n.Children {
		if child == nil {
			continue
		}
		childPath := path.Child(i)
		if _, ok := domain.BlockTypeOf(child.Type); ok {
			out = append(out, outlineEntry(child, childPath, heading))
			continue
		}
		out = append(out, nestedEntries(child, childPath, heading)...)
	}
	return out
}

// InsertBlock parses markdown and inserts its blocks at path, in order.
func (s *AssemblyService) InsertBlock(
	ctx context.Context, uri string, at domain.Path, markdown string,
) (*domain.DestinationDocument, error) {
	doc, _, err := s.insertMarkdown(ctx, uri, at, markdown)
	return doc, err
}

func (s *AssemblyService) insertMarkdown(
	ctx context.Context, uri string, at domain.Path, markdown string,
) (*domain.DestinationDocument, bool, error) {
	if s.markdown == nil {
		return nil, false, domain.ErrMarkdownUnavailable
	}
	parsed, err := s.markdown.Parse(ctx, markdown)
	if err != nil {
		return nil, false, fmt.Errorf("parse block: %w", err)
	}
	return s.apply(ctx, uri, func(tree *domain.Node) (*domain.Node, bool) {
		return insertBlocks(tree, at, parsed)
	})
}

// insertBlocks inserts the content children of parsed at consecutive slots
// from at. It reports false when nothing was inserted.
func insertBlocks(tree *domain.Node, at domain.Path, parsed *domain.Node) (*domain.Node, bool) {
	parent, ok := at.Parent()
	if !ok || parsed == nil {
		return tree.Clone(), false
	}
	idx, _ := at.Last()
	out, inserted := tree, false
	for _, block := range parsed.Children {
		if block.Type.IsMetadata() {
			continue
		}
		next, ok := insertNode(out, parent.Child(idx), block)
		if !ok {
			break
		}
		out, inserted = next, true
		idx++
	}
	if !inserted {
		return tree.Clone(), false
	}
	return out, true
}

// InsertSection inserts an indexed section at path and marks it resolved.
// An unknown section is logged and leaves the destination unchanged.
func (s *AssemblyService) InsertSection(
	ctx context.Context, uri string, at domain.Path, sectionID string,
) (*domain.DestinationDocument, error) {
	index, err := s.session.Index()
	if err != nil {
		return nil, err
	}
	item, err := index.Get(ctx, sectionID)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warn("insert: section %s not found", sectionID)
		return s.GetDestination(ctx, uri)
	}
	if err != nil {
		return nil, fmt.Errorf("get section %s: %w", sectionID, err)
	}
	doc, changed, err := s.insertMarkdown(ctx, uri, at, item.Metadata.Content)
	if err != nil || !changed {
		return doc, err
	}
	if err := s.review.MarkResolved(ctx, sectionID); err != nil {
		return nil, err
	}
	return doc, nil
}

// MergeGroup inserts one member of a group at path and resolves every
// member. An empty keepID keeps the first member in index order, which is
// the order GetSimilarityGroups lists them in.
func (s *AssemblyService) MergeGroup(
	ctx context.Context, uri string, at domain.Path, groupID, keepID string,
) (*domain.DestinationDocument, error) {
	if strings.TrimSpace(groupID) == "" {
		return nil, fmt.Errorf("%w: group id is required", domain.ErrInvalidInput)
	}
	members, err := s.review.membersOf(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		logger.Warn("merge: group %s has no unresolved members", groupID)
		return s.GetDestination(ctx, uri)
	}

	keep := members[0]
	if keepID != "" {
		found := false
		for _, m := range members {
			if m.ID == keepID {
				keep, found = m, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s is not a member of group %s", domain.ErrInvalidInput, keepID, groupID)
		}
	}

	doc, changed, err := s.insertMarkdown(ctx, uri, at, keep.Metadata.Content)
	if err != nil || !changed {
		return doc, err
	}
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	if err := s.review.MarkManyResolved(ctx, ids); err != nil {
		return nil, err
	}
	return doc, nil
}

// MoveBlock moves the node at from to to.
func (s *AssemblyService) MoveBlock(
	ctx context.Context, uri string, from, to domain.Path,
) (*domain.DestinationDocument, error) {
	return s.edit(ctx, uri, func(tree *domain.Node) (*domain.Node, bool) {
		return moveNode(tree, from, to)
	})
}

// DeleteBlock removes the node at path.
func (s *AssemblyService) DeleteBlock(ctx context.Context, uri string, at domain.Path) (*domain.DestinationDocument, error) {
	return s.edit(ctx, uri, func(tree *domain.Node) (*domain.Node, bool) {
		return deleteNode(tree, at)
	})
}

// treeEdit returns the edited copy and whether its paths resolved.
type treeEdit func(*domain.Node) (*domain.Node, bool)

// edit applies fn to the destination's tree, re-stamps paths and saves.
func (s *AssemblyService) edit(
	ctx context.Context, uri string, fn treeEdit,
) (*domain.DestinationDocument, error) {
	doc, _, err := s.apply(ctx, uri, fn)
	return doc, err
}

// apply is edit that also reports whether the edit took effect.
// An edit whose paths do not resolve is logged and not saved.
func (s *AssemblyService) apply(
	ctx context.Context, uri string, fn treeEdit,
) (*domain.DestinationDocument, bool, error) {
	doc, err := s.GetDestination(ctx, uri)
	if err != nil {
		return nil, false, err
	}
	store, err := s.session.Destinations()
	if err != nil {
		return nil, false, err
	}
	next, ok := fn(doc.Tree)
	if !ok {
		logger.Warn("edit of %s did not resolve against the document", uri)
		return doc, false, nil
	}
	doc.Tree = WithPathsAssigned(next)
	doc.UpdatedAt = s.now()
	if err := store.Save(ctx, *doc); err != nil {
		return nil, false, fmt.Errorf("save destination %s: %w", uri, err)
	}
	return doc, true, nil
}

// Publish serialises the destination and appends a glossary of the
// canonical terms that occur in the text, sorted by term.
func (s *AssemblyService) Publish(ctx context.Context, uri string) (string, error) {
	doc, err := s.GetDestination(ctx, uri)
	if err != nil {
		return "", err
	}
	if s.markdown == nil {
		return "", domain.ErrMarkdownUnavailable
	}
	text, err := s.markdown.Serialize(doc.Tree)
	if err != nil {
		return "", fmt.Errorf("serialize %s: %w", uri, err)
	}
	terms, err := s.review.CanonicalTerms(ctx)
	if err != nil {
		return "", err
	}
	return AppendGlossary(text, terms), nil
}

// AppendGlossary appends a glossary section listing the terms that occur in
// text as whole words (case-insensitive). Terms are expected sorted.
func AppendGlossary(text string, terms []domain.GlossaryTerm) string {
	var used []domain.GlossaryTerm
	for _, t := range terms {
		pattern := `(?i)(^|[^\pL\pN])` + regexp.QuoteMeta(t.Term) + `($|[^\pL\pN])`
		if matched, _ := regexp.MatchString(pattern, text); matched {
			used = append(used, t)
		}
	}
	if len(used) == 0 {
		return text
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(text, "\n"))
	b.WriteString("\n\n## " + GlossaryHeading + "\n\n")
	for _, t := range used {
		fmt.Fprintf(&b, "- **%s**: %s\n", t.Term, t.Definition)
	}
	return b.String()
}

// MarkMaterialized records that the destination has been written to disk.
func (s *AssemblyService) MarkMaterialized(ctx context.Context, uri string) error {
	doc, err := s.GetDestination(ctx, uri)
	if err != nil {
		return err
	}
	store, err := s.session.Destinations()
	if err != nil {
		return err
	}
	doc.Unsaved = false
	doc.UpdatedAt = s.now()
	return store.Save(ctx, *doc)
}

// ComputeWithBlockDeleted returns tree with the node at path removed, re-stamped.
func (s *AssemblyService) ComputeWithBlockDeleted(tree *domain.Node, at domain.Path) *domain.Node {
	return WithPathsAssigned(WithNodeDeleted(tree, at))
}

// ComputeWithBlockMoved returns tree with the node at from moved to to, re-stamped.
func (s *AssemblyService) ComputeWithBlockMoved(tree *domain.Node, from, to domain.Path) *domain.Node {
	return WithPathsAssigned(WithNodeMoved(tree, from, to))
}

// ComputeWithBlockInserted returns tree with node inserted at path, re-stamped.
func (s *AssemblyService) ComputeWithBlockInserted(tree *domain.Node, at domain.Path, node *domain.Node) *domain.Node {
	return WithPathsAssigned(WithNodeInserted(tree, at, node))
}

// AddPathsToTree returns tree with every node stamped with its path.
func (s *AssemblyService) AddPathsToTree(tree *domain.Node) *domain.Node {
	return WithPathsAssigned(tree)
}
