package services

import "github.com/custodia-labs/docmerge/internal/core/domain"

// Segment walks tree in document order and returns one content unit per
// recognised block. Headings update the heading context before they are
// emitted, so a heading's parent heading is its own text. Emitted blocks are
// not descended into; metadata nodes are skipped.
//
// Unit paths are read from the tree's path stamps when present and computed
// from the walk otherwise.
func Segment(tree *domain.Node, sourceID string) []domain.ContentUnit {
	if tree == nil {
		return nil
	}
	s := &segmenter{sourceID: sourceID}
	s.walk(tree, domain.Path{})
	return s.units
}

type segmenter struct {
	sourceID     string
	heading      string
	headingDepth int
	units        []domain.ContentUnit
}

func (s *segmenter) walk(n *domain.Node, path domain.Path) {
	if n.Type.IsMetadata() {
		return
	}
	if n.Type == domain.NodeHeading {
		s.heading = n.Text()
		s.headingDepth = n.Depth
	}
	if bt, ok := domain.BlockTypeOf(n.Type); ok {
		s.emit(n, bt, path)
		return
	}
	for i, child := range n.Children {
		if child != nil {
			s.walk(child, path.Child(i))
		}
	}
}

func (s *segmenter) emit(n *domain.Node, bt domain.BlockType, walked domain.Path) {
	path := walked
	if stamped, ok := n.Path(); ok {
		path = stamped
	}
	unit := domain.ContentUnit{
		ID:      UnitID(s.sourceID, path),
		Type:    bt,
		Content: n.Text(),
		Node:    n.Clone(),
		Metadata: domain.UnitMetadata{
			SourceID:      s.sourceID,
			HeadingDepth:  s.headingDepth,
			ParentHeading: s.heading,
			Path:          path.Clone(),
		},
	}
	if n.Position != nil {
		unit.Metadata.StartLine = n.Position.StartLine
		unit.Metadata.EndLine = n.Position.EndLine
	}
	s.units = append(s.units, unit)
}
