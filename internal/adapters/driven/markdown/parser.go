package markdown

import (
	"context"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driven"
	"github.com/custodia-labs/docmerge/internal/logger"
)

// Verify interface compliance.
var _ driven.MarkdownTree = (*Parser)(nil)

// DataKeyFrontmatter holds the decoded frontmatter map on yaml nodes.
const DataKeyFrontmatter = "frontmatter"

// Parser implements driven.MarkdownTree using goldmark.
type Parser struct {
	md goldmark.Markdown
}

// NewParser creates a markdown parser with GFM tables enabled.
func NewParser() *Parser {
	return &Parser{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Strikethrough),
		),
	}
}

// Parse converts markdown text into a document tree.
func (p *Parser) Parse(ctx context.Context, src string) (*domain.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src = strings.ReplaceAll(src, "\r\n", "\n")

	root := domain.NewRoot()
	body := src
	if fm, raw, lines, ok := splitFrontmatter(src); ok {
		root.Children = append(root.Children, fm)
		// keep line numbers aligned with the original text
		body = strings.Repeat("\n", lines) + raw
	}

	source := []byte(body)
	doc := p.md.Parser().Parse(text.NewReader(source))
	c := &converter{source: source, lineStarts: lineStarts(source)}
	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		if n := c.convert(child); n != nil {
			root.Children = append(root.Children, n)
		}
	}
	return root, nil
}

// splitFrontmatter detects a leading "---" fenced YAML block. It returns the
// yaml node, the remaining text and the number of lines the block spanned.
func splitFrontmatter(src string) (*domain.Node, string, int, bool) {
	if !strings.HasPrefix(src, "---\n") {
		return nil, "", 0, false
	}
	lines := strings.Split(src, "\n")
	end := -1
	for i := 1; i < len(lines); i++ {
		if l := strings.TrimRight(lines[i], " \t"); l == "---" || l == "..." {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, "", 0, false
	}

	value := strings.Join(lines[1:end], "\n")
	node := &domain.Node{
		Type:     domain.NodeYAML,
		Value:    value,
		Position: &domain.Position{StartLine: 1, EndLine: end + 1},
	}
	var fields map[string]any
	if err := yaml.Unmarshal([]byte(value), &fields); err != nil {
		logger.Warn("markdown: frontmatter is not valid YAML: %v", err)
	} else if len(fields) > 0 {
		node.Data = map[string]any{DataKeyFrontmatter: fields}
	}
	return node, strings.Join(lines[end+1:], "\n"), end + 1, true
}

type converter struct {
	source     []byte
	lineStarts []int
}

func lineStarts(source []byte) []int {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineOf returns the 1-based line containing offset.
func (c *converter) lineOf(offset int) int {
	return sort.SearchInts(c.lineStarts, offset+1)
}

func (c *converter) convert(n ast.Node) *domain.Node {
	var out *domain.Node
	switch v := n.(type) {
	case *ast.Heading:
		out = &domain.Node{Type: domain.NodeHeading, Depth: v.Level, Children: c.inline(n)}
	case *ast.Paragraph, *ast.TextBlock:
		out = &domain.Node{Type: domain.NodeParagraph, Children: c.inline(n)}
	case *ast.List:
		out = &domain.Node{
			Type:    domain.NodeList,
			Ordered: v.IsOrdered(),
			Start:   v.Start,
			Spread:  !v.IsTight,
		}
		c.appendChildren(out, n)
	case *ast.ListItem:
		out = &domain.Node{Type: domain.NodeListItem}
		c.appendChildren(out, n)
	case *ast.Blockquote:
		out = &domain.Node{Type: domain.NodeBlockquote}
		c.appendChildren(out, n)
	case *ast.FencedCodeBlock:
		out = &domain.Node{Type: domain.NodeCode, Lang: string(v.Language(c.source)), Value: c.lines(n, false)}
	case *ast.CodeBlock:
		out = &domain.Node{Type: domain.NodeCode, Value: c.lines(n, false)}
	case *ast.ThematicBreak:
		out = &domain.Node{Type: domain.NodeThematicBreak}
	case *ast.HTMLBlock:
		value := c.lines(n, false)
		if v.HasClosure() {
			value = strings.TrimRight(value+"\n"+string(v.ClosureLine.Value(c.source)), "\n")
		}
		out = &domain.Node{Type: domain.NodeHTML, Value: value}
	case *extast.Table:
		out = &domain.Node{Type: domain.NodeTable}
		for _, a := range v.Alignments {
			out.Align = append(out.Align, alignment(a))
		}
		c.appendChildren(out, n)
	case *extast.TableHeader, *extast.TableRow:
		out = &domain.Node{Type: domain.NodeTableRow}
		c.appendChildren(out, n)
	case *extast.TableCell:
		out = &domain.Node{Type: domain.NodeTableCell, Children: c.inline(n)}
	default:
		logger.Debug("markdown: skipping unsupported block %s", n.Kind())
		return nil
	}
	if start, stop, ok := c.span(n); ok {
		out.Position = &domain.Position{StartLine: c.lineOf(start), EndLine: c.lineOf(max(start, stop-1))}
	}
	return out
}

func (c *converter) appendChildren(out *domain.Node, n ast.Node) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if conv := c.convert(child); conv != nil {
			out.Children = append(out.Children, conv)
		}
	}
}

// inline returns a single text child holding the block's raw inline markdown.
func (c *converter) inline(n ast.Node) []*domain.Node {
	value := c.lines(n, true)
	if value == "" {
		value = c.descendantText(n)
	}
	if value == "" {
		return nil
	}
	return []*domain.Node{domain.NewText(value)}
}

// lines joins the raw source lines of a block.
func (c *converter) lines(n ast.Node, trim bool) string {
	segs := n.Lines()
	if segs == nil || segs.Len() == 0 {
		return ""
	}
	parts := make([]string, 0, segs.Len())
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		line := strings.TrimRight(string(seg.Value(c.source)), "\n")
		if seg.Padding > 0 {
			line = strings.Repeat(" ", seg.Padding) + line
		}
		if trim {
			line = strings.TrimSpace(line)
		}
		parts = append(parts, line)
	}
	out := strings.Join(parts, "\n")
	if trim {
		return strings.TrimSpace(out)
	}
	return strings.TrimRight(out, "\n")
}

// descendantText concatenates the text segments below n.
func (c *converter) descendantText(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := node.(*ast.Text); ok && entering {
			b.Write(t.Segment.Value(c.source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// span returns the source byte range covered by n and its descendants.
func (c *converter) span(n ast.Node) (int, int, bool) {
	start, stop, found := 0, 0, false
	merge := func(s, e int) {
		if !found || s < start {
			start = s
		}
		if !found || e > stop {
			stop = e
		}
		found = true
	}
	if segs := n.Lines(); segs != nil && segs.Len() > 0 && n.Type() == ast.TypeBlock {
		merge(segs.At(0).Start, segs.At(segs.Len()-1).Stop)
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if child.Type() != ast.TypeBlock {
			continue
		}
		if s, e, ok := c.span(child); ok {
			merge(s, e)
		}
	}
	return start, stop, found
}

func alignment(a extast.Alignment) string {
	switch a {
	case extast.AlignLeft:
		return "left"
	case extast.AlignRight:
		return "right"
	case extast.AlignCenter:
		return "center"
	default:
		return ""
	}
}
