package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *Node {
	return NewRoot(
		NewHeading(1, "Intro"),
		NewParagraph("first"),
		&Node{Type: NodeList, Children: []*Node{
			{Type: NodeListItem, Children: []*Node{NewParagraph("a")}},
			{Type: NodeListItem, Children: []*Node{NewParagraph("b")}},
		}},
	)
}

func TestNode_CloneIsDeep(t *testing.T) {
	tree := sampleTree()
	tree.Children[1].SetPath(Path{1})

	clone := tree.Clone()
	clone.Children[1].Children[0].Value = "changed"
	clone.Children[2].Children = clone.Children[2].Children[:1]
	p, _ := clone.Children[1].Path()
	p[0] = 9

	assert.Equal(t, "first", tree.Children[1].Text())
	assert.Len(t, tree.Children[2].Children, 2)
	orig, ok := tree.Children[1].Path()
	require.True(t, ok)
	assert.Equal(t, Path{1}, orig)
}

func TestNode_Text(t *testing.T) {
	tree := sampleTree()

	assert.Equal(t, "Intro", tree.Children[0].Text())
	assert.Equal(t, "a\nb", tree.Children[2].Text())

	row := &Node{Type: NodeTableRow, Children: []*Node{
		{Type: NodeTableCell, Children: []*Node{NewText("x")}},
		{Type: NodeTableCell, Children: []*Node{NewText("y")}},
	}}
	assert.Equal(t, "x | y", row.Text())
	assert.Equal(t, "", (*Node)(nil).Text())
}

func TestNode_CountAndAt(t *testing.T) {
	tree := sampleTree()

	// root, heading+text, paragraph+text, list, 2x(item, paragraph, text)
	assert.Equal(t, 12, tree.Count())
	assert.Equal(t, "b", tree.At(Path{2, 1, 0}).Text())
	assert.Same(t, tree, tree.At(Path{}))
	assert.Nil(t, tree.At(Path{5}))
	assert.Nil(t, tree.At(Path{0, 0, 0}))
	assert.Nil(t, tree.At(Path{-1}))
}

func TestNode_PathSurvivesJSON(t *testing.T) {
	n := NewParagraph("x")
	n.SetPath(Path{0, 3})

	raw, err := json.Marshal(n)
	require.NoError(t, err)

	var decoded Node
	require.NoError(t, json.Unmarshal(raw, &decoded))

	p, ok := decoded.Path()
	require.True(t, ok)
	assert.Equal(t, Path{0, 3}, p)
}

func TestNodeType_IsMetadata(t *testing.T) {
	assert.True(t, NodeYAML.IsMetadata())
	assert.False(t, NodeParagraph.IsMetadata())
}
