package driven

import (
	"context"

	"github.com/custodia-labs/docmerge/internal/core/domain"
)

// MarkdownTree converts markdown text to and from a typed node tree.
type MarkdownTree interface {
	// Parse builds a tree from markdown text. The root's children are the
	// top-level blocks in document order; frontmatter becomes a yaml node.
	Parse(ctx context.Context, text string) (*domain.Node, error)

	// Serialize renders a tree back to markdown text.
	Serialize(tree *domain.Node) (string, error)
}
