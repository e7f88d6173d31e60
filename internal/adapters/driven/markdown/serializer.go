package markdown

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docmerge/internal/core/domain"
)

// Serialize renders a document tree as markdown. Blocks are separated by a
// blank line and the output ends with a single newline.
func (p *Parser) Serialize(tree *domain.Node) (string, error) {
	if tree == nil {
		return "", nil
	}
	var blocks []*domain.Node
	if tree.Type == domain.NodeRoot {
		blocks = tree.Children
	} else {
		blocks = []*domain.Node{tree}
	}
	out, err := renderBlocks(blocks, "\n\n")
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", nil
	}
	return out + "\n", nil
}

func renderBlocks(blocks []*domain.Node, sep string) (string, error) {
	parts := make([]string, 0, len(blocks))
	for _, n := range blocks {
		if n == nil {
			continue
		}
		s, err := renderBlock(n)
		if err != nil {
			return "", err
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep), nil
}

func renderBlock(n *domain.Node) (string, error) {
	switch n.Type {
	case domain.NodeYAML:
		return renderFrontmatter(n)
	case domain.NodeHeading:
		depth := min(max(n.Depth, 1), 6)
		return strings.Repeat("#", depth) + " " + n.Text(), nil
	case domain.NodeParagraph, domain.NodeTableCell:
		return n.Text(), nil
	case domain.NodeText, domain.NodeHTML:
		return n.Value, nil
	case domain.NodeCode:
		return renderCode(n), nil
	case domain.NodeThematicBreak:
		return "***", nil
	case domain.NodeBlockquote:
		inner, err := renderBlocks(n.Children, "\n\n")
		if err != nil {
			return "", err
		}
		return prefixLines(inner, "> ", ">"), nil
	case domain.NodeList:
		return renderList(n)
	case domain.NodeListItem:
		return renderBlocks(n.Children, "\n\n")
	case domain.NodeTable:
		return renderTable(n), nil
	case domain.NodeTableRow:
		return renderRow(n), nil
	case domain.NodeRoot:
		return renderBlocks(n.Children, "\n\n")
	default:
		return "", fmt.Errorf("%w: cannot serialize node type %q", domain.ErrInvalidInput, n.Type)
	}
}

func renderFrontmatter(n *domain.Node) (string, error) {
	value := n.Value
	if value == "" {
		if fields, ok := n.Data[DataKeyFrontmatter]; ok {
			data, err := yaml.Marshal(fields)
			if err != nil {
				return "", fmt.Errorf("encode frontmatter: %w", err)
			}
			value = strings.TrimRight(string(data), "\n")
		}
	}
	return "---\n" + value + "\n---", nil
}

func renderCode(n *domain.Node) string {
	fence := "```"
	for strings.Contains(n.Value, fence) {
		fence += "`"
	}
	return fence + n.Lang + "\n" + n.Value + "\n" + fence
}

func renderList(n *domain.Node) (string, error) {
	itemSep, blockSep := "\n", "\n"
	if n.Spread {
		itemSep, blockSep = "\n\n", "\n\n"
	}
	start := n.Start
	if n.Ordered && start == 0 {
		start = 1
	}

	items := make([]string, 0, len(n.Children))
	for i, item := range n.Children {
		if item == nil {
			continue
		}
		marker := "- "
		if n.Ordered {
			marker = strconv.Itoa(start+i) + ". "
		}
		body, err := renderBlocks(item.Children, blockSep)
		if err != nil {
			return "", err
		}
		indent := strings.Repeat(" ", len(marker))
		items = append(items, marker+strings.TrimPrefix(prefixLines(body, indent, ""), indent))
	}
	return strings.Join(items, itemSep), nil
}

func renderTable(n *domain.Node) string {
	if len(n.Children) == 0 {
		return ""
	}
	cols := 0
	for _, row := range n.Children {
		cols = max(cols, len(row.Children))
	}
	lines := []string{renderRow(n.Children[0])}
	delims := make([]string, cols)
	for i := range delims {
		align := ""
		if i < len(n.Align) {
			align = n.Align[i]
		}
		switch align {
		case "left":
			delims[i] = ":---"
		case "right":
			delims[i] = "---:"
		case "center":
			delims[i] = ":---:"
		default:
			delims[i] = "---"
		}
	}
	lines = append(lines, "| "+strings.Join(delims, " | ")+" |")
	for _, row := range n.Children[1:] {
		lines = append(lines, renderRow(row))
	}
	return strings.Join(lines, "\n")
}

func renderRow(row *domain.Node) string {
	cells := make([]string, len(row.Children))
	for i, cell := range row.Children {
		cells[i] = cell.Text()
	}
	return "| " + strings.Join(cells, " | ") + " |"
}

// prefixLines prefixes every line of s; blank lines get blank instead.
func prefixLines(s, prefix, blank string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l == "" {
			lines[i] = blank
		} else {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}
