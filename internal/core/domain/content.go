package domain

// BlockType tags the kind of a content unit.
type BlockType string

// Recognised block types.
const (
	BlockSection    BlockType = "section"
	BlockParagraph  BlockType = "paragraph"
	BlockList       BlockType = "list"
	BlockCode       BlockType = "code"
	BlockHeading    BlockType = "heading"
	BlockBlockquote BlockType = "blockquote"
	BlockRule       BlockType = "rule"
	BlockTable      BlockType = "table"
	BlockRawMarkup  BlockType = "raw-markup"
)

// blockTypesByNode maps tree node types to the block types they become.
var blockTypesByNode = map[NodeType]BlockType{
	NodeParagraph:     BlockParagraph,
	NodeList:          BlockList,
	NodeCode:          BlockCode,
	NodeHeading:       BlockHeading,
	NodeBlockquote:    BlockBlockquote,
	NodeThematicBreak: BlockRule,
	NodeTable:         BlockTable,
	NodeHTML:          BlockRawMarkup,
}

// BlockTypeOf returns the block type for a node type, if it is a recognised block.
func BlockTypeOf(t NodeType) (BlockType, bool) {
	bt, ok := blockTypesByNode[t]
	return bt, ok
}

// IsValid returns true if the block type is recognised.
func (b BlockType) IsValid() bool {
	switch b {
	case BlockSection, BlockParagraph, BlockList, BlockCode, BlockHeading,
		BlockBlockquote, BlockRule, BlockTable, BlockRawMarkup:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b BlockType) String() string {
	return string(b)
}

// UnitMetadata describes where a content unit came from.
type UnitMetadata struct {
	// SourceID references the originating document.
	SourceID string

	// HeadingDepth is the depth of the nearest enclosing heading (0 if none).
	HeadingDepth int

	// ParentHeading is the text of the nearest enclosing heading.
	ParentHeading string

	// Path locates the unit in the tree it was segmented from.
	Path Path

	// StartLine and EndLine locate the unit in the source text (0 if unknown).
	StartLine int
	EndLine   int
}

// ContentUnit is one atomic, typed piece of document content.
type ContentUnit struct {
	// ID is stable for a given source and path.
	ID string

	Type BlockType

	// Content is the plain text of the block.
	Content string

	// Node is a detached copy of the block's subtree.
	Node *Node

	Metadata UnitMetadata
}

// HasParentHeading returns true if a heading preceded the unit.
func (u ContentUnit) HasParentHeading() bool {
	return u.Metadata.ParentHeading != ""
}
