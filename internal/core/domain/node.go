package domain

import "strings"

// NodeType identifies the kind of a document tree node.
type NodeType string

// Node types produced by the markdown tree provider.
const (
	NodeRoot          NodeType = "root"
	NodeHeading       NodeType = "heading"
	NodeParagraph     NodeType = "paragraph"
	NodeList          NodeType = "list"
	NodeListItem      NodeType = "listItem"
	NodeCode          NodeType = "code"
	NodeBlockquote    NodeType = "blockquote"
	NodeThematicBreak NodeType = "thematicBreak"
	NodeTable         NodeType = "table"
	NodeTableRow      NodeType = "tableRow"
	NodeTableCell     NodeType = "tableCell"
	NodeHTML          NodeType = "html"
	NodeText          NodeType = "text"
	NodeYAML          NodeType = "yaml"
)

// IsMetadata returns true for nodes that carry document metadata rather than content.
func (t NodeType) IsMetadata() bool {
	return t == NodeYAML
}

// IsLiteral returns true for nodes that hold content in Value and take no children.
func (t NodeType) IsLiteral() bool {
	switch t {
	case NodeText, NodeCode, NodeHTML, NodeYAML, NodeThematicBreak:
		return true
	default:
		return false
	}
}

// dataKeyPath is the data bag key holding a node's path stamp.
const dataKeyPath = "path"

// Position locates a node in its source text (1-based lines, inclusive).
type Position struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

// Node is one node of an ordered, typed document tree.
// Leaf blocks (heading, paragraph, table cell) carry their inline markdown
// in a single text child; code, html and yaml carry it in Value.
type Node struct {
	Type NodeType `json:"type"`

	// Depth is the heading level (1-6).
	Depth int `json:"depth,omitempty"`

	// Value holds literal content for text, code, html and yaml nodes.
	Value string `json:"value,omitempty"`

	// Lang is the info string of a fenced code block.
	Lang string `json:"lang,omitempty"`

	// Ordered, Start and Spread describe lists.
	Ordered bool `json:"ordered,omitempty"`
	Start   int  `json:"start,omitempty"`
	Spread  bool `json:"spread,omitempty"`

	// Align holds per-column alignment for tables ("", "left", "center", "right").
	Align []string `json:"align,omitempty"`

	Position *Position `json:"position,omitempty"`

	// Data is a generic bag; the tree editor stores the path stamp here.
	Data map[string]any `json:"data,omitempty"`

	Children []*Node `json:"children,omitempty"`
}

// NewRoot creates an empty root node.
func NewRoot(children ...*Node) *Node {
	return &Node{Type: NodeRoot, Children: children}
}

// NewText creates a text node.
func NewText(value string) *Node {
	return &Node{Type: NodeText, Value: value}
}

// NewHeading creates a heading node with inline text.
func NewHeading(depth int, text string) *Node {
	return &Node{Type: NodeHeading, Depth: depth, Children: []*Node{NewText(text)}}
}

// NewParagraph creates a paragraph node with inline text.
func NewParagraph(text string) *Node {
	return &Node{Type: NodeParagraph, Children: []*Node{NewText(text)}}
}

// Clone returns a deep copy of the node and all its descendants.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	if n.Align != nil {
		out.Align = append([]string(nil), n.Align...)
	}
	if n.Position != nil {
		pos := *n.Position
		out.Position = &pos
	}
	if n.Data != nil {
		out.Data = make(map[string]any, len(n.Data))
		for k, v := range n.Data {
			if p, ok := v.(Path); ok {
				v = p.Clone()
			}
			out.Data[k] = v
		}
	}
	if n.Children != nil {
		out.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			out.Children[i] = child.Clone()
		}
	}
	return &out
}

// Path returns the path stamp recorded by the tree editor, if any.
// Stamps decoded from JSON arrive as []any and are converted.
func (n *Node) Path() (Path, bool) {
	if n == nil || n.Data == nil {
		return nil, false
	}
	switch v := n.Data[dataKeyPath].(type) {
	case Path:
		return v, true
	case []int:
		return Path(v), true
	case []any:
		p := make(Path, 0, len(v))
		for _, e := range v {
			f, ok := e.(float64)
			if !ok {
				return nil, false
			}
			p = append(p, int(f))
		}
		return p, true
	default:
		return nil, false
	}
}

// SetPath stamps the node with its path from the root.
func (n *Node) SetPath(p Path) {
	if n.Data == nil {
		n.Data = make(map[string]any)
	}
	n.Data[dataKeyPath] = p.Clone()
}

// Text returns the literal text of the node: its Value for leaves,
// otherwise the text of its children. Blocks are separated by newlines.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	switch n.Type {
	case NodeText, NodeCode, NodeHTML, NodeYAML:
		return n.Value
	}
	sep := "\n"
	switch n.Type {
	case NodeHeading, NodeParagraph, NodeTableCell:
		sep = ""
	case NodeTableRow:
		sep = " | "
	}
	parts := make([]string, 0, len(n.Children))
	for _, child := range n.Children {
		if t := child.Text(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, sep)
}

// Count returns the number of nodes in the subtree, including n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, child := range n.Children {
		total += child.Count()
	}
	return total
}

// At returns the node at path p below n, or nil if p does not resolve.
func (n *Node) At(p Path) *Node {
	cur := n
	for _, idx := range p {
		if cur == nil || idx < 0 || idx >= len(cur.Children) {
			return nil
		}
		cur = cur.Children[idx]
	}
	return cur
}
