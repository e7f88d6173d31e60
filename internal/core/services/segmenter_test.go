package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmerge/internal/core/domain"
)

func TestSegment_HeadingAndTwoParagraphs(t *testing.T) {
	tree := WithPathsAssigned(domain.NewRoot(
		domain.NewHeading(2, "Install"),
		domain.NewParagraph("Download the binary."),
		domain.NewParagraph("Put it on your PATH."),
	))

	units := Segment(tree, "guide.md")

	require.Len(t, units, 3)
	assert.Equal(t, domain.BlockHeading, units[0].Type)
	assert.Equal(t, domain.BlockParagraph, units[1].Type)
	assert.Equal(t, domain.BlockParagraph, units[2].Type)
	assert.Equal(t, "Install", units[1].Metadata.ParentHeading)
	assert.Equal(t, "Install", units[2].Metadata.ParentHeading)
	assert.Equal(t, "Install", units[0].Metadata.ParentHeading)
	assert.Equal(t, 2, units[1].Metadata.HeadingDepth)
	assert.Equal(t, domain.Path{1}, units[1].Metadata.Path)
	assert.Equal(t, "Download the binary.", units[1].Content)
}

func TestSegment_NoHeadingYet(t *testing.T) {
	units := Segment(domain.NewRoot(domain.NewParagraph("lead")), "a.md")

	require.Len(t, units, 1)
	assert.False(t, units[0].HasParentHeading())
	assert.Zero(t, units[0].Metadata.HeadingDepth)
}

func TestSegment_AllBlockTypes(t *testing.T) {
	tree := domain.NewRoot(
		&domain.Node{Type: domain.NodeYAML, Value: "title: x"},
		domain.NewHeading(1, "H"),
		domain.NewParagraph("p"),
		&domain.Node{Type: domain.NodeList, Children: []*domain.Node{
			{Type: domain.NodeListItem, Children: []*domain.Node{domain.NewParagraph("item")}},
		}},
		&domain.Node{Type: domain.NodeCode, Value: "go run ."},
		&domain.Node{Type: domain.NodeBlockquote, Children: []*domain.Node{domain.NewParagraph("q")}},
		&domain.Node{Type: domain.NodeThematicBreak},
		&domain.Node{Type: domain.NodeTable},
		&domain.Node{Type: domain.NodeHTML, Value: "<br>"},
	)

	units := Segment(tree, "a.md")

	types := make([]domain.BlockType, len(units))
	for i, u := range units {
		types[i] = u.Type
	}
	assert.Equal(t, []domain.BlockType{
		domain.BlockHeading, domain.BlockParagraph, domain.BlockList, domain.BlockCode,
		domain.BlockBlockquote, domain.BlockRule, domain.BlockTable, domain.BlockRawMarkup,
	}, types)
}

func TestSegment_HeadingContextFollowsDocumentOrder(t *testing.T) {
	tree := domain.NewRoot(
		domain.NewHeading(1, "One"),
		domain.NewParagraph("a"),
		domain.NewHeading(2, "Two"),
		domain.NewParagraph("b"),
	)

	units := Segment(tree, "a.md")

	require.Len(t, units, 4)
	assert.Equal(t, "One", units[1].Metadata.ParentHeading)
	assert.Equal(t, "Two", units[3].Metadata.ParentHeading)
	assert.Equal(t, 2, units[3].Metadata.HeadingDepth)
}

func TestSegment_IsPureAndStable(t *testing.T) {
	tree := editorTree()
	before := tree.Clone()

	first := Segment(tree, "a.md")
	second := Segment(tree, "a.md")

	assert.Equal(t, before, tree)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
	assert.NotEqual(t, first[0].ID, Segment(tree, "b.md")[0].ID)

	first[1].Node.Children[0].Value = "changed"
	assert.Equal(t, "alpha", tree.Children[1].Text(), "units must hold copies")
}

func TestSegment_Positions(t *testing.T) {
	p := domain.NewParagraph("x")
	p.Position = &domain.Position{StartLine: 3, EndLine: 5}

	units := Segment(domain.NewRoot(p), "a.md")

	require.Len(t, units, 1)
	assert.Equal(t, 3, units[0].Metadata.StartLine)
	assert.Equal(t, 5, units[0].Metadata.EndLine)
}

func TestSegment_Nil(t *testing.T) {
	assert.Empty(t, Segment(nil, "a.md"))
}
