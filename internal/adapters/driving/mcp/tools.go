package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docmerge/internal/core/domain"
)

// ListInput selects sections or glossary terms.
type ListInput struct {
	Terms bool `json:"terms,omitempty" jsonschema:"list glossary terms instead of sections"`
}

// ItemOutput is one section or glossary term.
type ItemOutput struct {
	ID            string  `json:"id"`
	SourceID      string  `json:"source_id"`
	Content       string  `json:"content"`
	Kind          string  `json:"kind"`
	ParentHeading string  `json:"parent_heading,omitempty"`
	StartLine     int     `json:"start_line,omitempty"`
	EndLine       int     `json:"end_line,omitempty"`
	Confidence    float64 `json:"confidence,omitempty"`
}

// GroupOutput is one group of near-duplicate items.
type GroupOutput struct {
	ID      string       `json:"id"`
	Members []ItemOutput `json:"members"`
}

// ListGroupsOutput is the output schema for the list_groups tool.
type ListGroupsOutput struct {
	Groups []GroupOutput `json:"groups"`
	Count  int           `json:"count"`
}

// ListUniqueOutput is the output schema for the list_unique tool.
type ListUniqueOutput struct {
	Items []ItemOutput `json:"items"`
	Count int          `json:"count"`
}

// ResolveInput is the input schema for the resolve tool.
type ResolveInput struct {
	IDs []string `json:"ids" jsonschema:"ids of the sections or terms to mark resolved"`
}

// ResolveOutput is the output schema for the resolve tool.
type ResolveOutput struct {
	Resolved int `json:"resolved"`
}

// PopInput is the input schema for the pop_from_group tool.
type PopInput struct {
	ID string `json:"id" jsonschema:"id of the item to remove from its group"`
}

// PopOutput is the output schema for the pop_from_group tool.
type PopOutput struct {
	Popped string `json:"popped"`
}

// OutlineInput is the input schema for the outline tool.
type OutlineInput struct {
	URI string `json:"uri" jsonschema:"uri of the destination document"`
}

// OutlineItem is one content unit of a destination, flattened in document order.
type OutlineItem struct {
	Path          string `json:"path"`
	Type          string `json:"type"`
	Content       string `json:"content"`
	ParentHeading string `json:"parent_heading,omitempty"`
	Depth         int    `json:"depth"`
}

// OutlineOutput is the output schema for the outline tool.
type OutlineOutput struct {
	URI   string        `json:"uri"`
	Items []OutlineItem `json:"items"`
}

// DraftInput is the input schema for the draft_merge tool.
type DraftInput struct {
	GroupID string `json:"group_id" jsonschema:"id of the group to merge"`
}

// DraftOutput is the output schema for the draft_merge tool.
type DraftOutput struct {
	GroupID   string   `json:"group_id"`
	Kind      string   `json:"kind"`
	MemberIDs []string `json:"member_ids"`
	Markdown  string   `json:"markdown"`
	Model     string   `json:"model"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_groups",
		Description: "List unresolved groups of near-duplicate sections, or glossary terms when terms is true",
	}, s.handleListGroups)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_unique",
		Description: "List unresolved sections (or glossary terms) that have no near-duplicate",
	}, s.handleListUnique)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "resolve",
		Description: "Mark sections or terms as resolved so they leave the review lists",
	}, s.handleResolve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "pop_from_group",
		Description: "Remove a false positive from its group without resolving it",
	}, s.handlePopFromGroup)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "outline",
		Description: "Show the content units of a destination document with their paths",
	}, s.handleOutline)

	if s.ports.Draft != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "draft_merge",
			Description: "Ask the configured language model to merge the members of a group; nothing is resolved",
		}, s.handleDraftMerge)
	}
}

func (s *Server) handleListGroups(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListInput,
) (*mcp.CallToolResult, ListGroupsOutput, error) {
	output := ListGroupsOutput{Groups: []GroupOutput{}}

	if input.Terms {
		groups, err := s.ports.Review.GetTermGroups(ctx)
		if err != nil {
			return nil, ListGroupsOutput{}, fmt.Errorf("listing term groups: %w", err)
		}
		for _, g := range groups {
			out := GroupOutput{ID: g.ID, Members: make([]ItemOutput, len(g.Members))}
			for i, m := range g.Members {
				out.Members[i] = termOutput(m)
			}
			output.Groups = append(output.Groups, out)
		}
	} else {
		groups, err := s.ports.Review.GetSimilarityGroups(ctx)
		if err != nil {
			return nil, ListGroupsOutput{}, fmt.Errorf("listing groups: %w", err)
		}
		for _, g := range groups {
			out := GroupOutput{ID: g.ID, Members: make([]ItemOutput, len(g.Members))}
			for i, m := range g.Members {
				out.Members[i] = sectionOutput(m)
			}
			output.Groups = append(output.Groups, out)
		}
	}

	output.Count = len(output.Groups)
	return nil, output, nil
}

func (s *Server) handleListUnique(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListInput,
) (*mcp.CallToolResult, ListUniqueOutput, error) {
	output := ListUniqueOutput{Items: []ItemOutput{}}

	if input.Terms {
		terms, err := s.ports.Review.GetUniqueTerms(ctx)
		if err != nil {
			return nil, ListUniqueOutput{}, fmt.Errorf("listing unique terms: %w", err)
		}
		for _, t := range terms {
			output.Items = append(output.Items, termOutput(t))
		}
	} else {
		sections, err := s.ports.Review.GetUniqueSections(ctx)
		if err != nil {
			return nil, ListUniqueOutput{}, fmt.Errorf("listing unique sections: %w", err)
		}
		for _, sec := range sections {
			output.Items = append(output.Items, sectionOutput(sec))
		}
	}

	output.Count = len(output.Items)
	return nil, output, nil
}

func (s *Server) handleResolve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResolveInput,
) (*mcp.CallToolResult, ResolveOutput, error) {
	if len(input.IDs) == 0 {
		return nil, ResolveOutput{}, fmt.Errorf("%w: ids are required", domain.ErrInvalidInput)
	}
	if err := s.ports.Review.MarkManyResolved(ctx, input.IDs); err != nil {
		return nil, ResolveOutput{}, fmt.Errorf("resolving: %w", err)
	}
	return nil, ResolveOutput{Resolved: len(input.IDs)}, nil
}

func (s *Server) handlePopFromGroup(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PopInput,
) (*mcp.CallToolResult, PopOutput, error) {
	if input.ID == "" {
		return nil, PopOutput{}, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	if err := s.ports.Review.PopFromGroup(ctx, input.ID); err != nil {
		return nil, PopOutput{}, fmt.Errorf("popping %s: %w", input.ID, err)
	}
	return nil, PopOutput{Popped: input.ID}, nil
}

func (s *Server) handleOutline(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input OutlineInput,
) (*mcp.CallToolResult, OutlineOutput, error) {
	if s.ports.Assembly == nil {
		return nil, OutlineOutput{}, ErrMissingAssemblyService
	}
	entries, err := s.ports.Assembly.Outline(ctx, input.URI)
	if err != nil {
		return nil, OutlineOutput{}, fmt.Errorf("outline %s: %w", input.URI, err)
	}
	output := OutlineOutput{URI: input.URI, Items: []OutlineItem{}}
	output.Items = flattenOutline(output.Items, entries, 0)
	return nil, output, nil
}

func (s *Server) handleDraftMerge(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DraftInput,
) (*mcp.CallToolResult, DraftOutput, error) {
	if s.ports.Draft == nil {
		return nil, DraftOutput{}, ErrMissingDraftService
	}
	if input.GroupID == "" {
		return nil, DraftOutput{}, fmt.Errorf("%w: group_id is required", domain.ErrInvalidInput)
	}
	draft, err := s.ports.Draft.DraftMerge(ctx, input.GroupID)
	if err != nil {
		return nil, DraftOutput{}, fmt.Errorf("drafting %s: %w", input.GroupID, err)
	}
	return nil, DraftOutput{
		GroupID:   draft.GroupID,
		Kind:      string(draft.ContentType),
		MemberIDs: draft.MemberIDs,
		Markdown:  draft.Markdown,
		Model:     draft.Model,
	}, nil
}

// flattenOutline appends entries and their children depth-first.
func flattenOutline(dst []OutlineItem, entries []domain.OutlineEntry, depth int) []OutlineItem {
	for _, e := range entries {
		dst = append(dst, OutlineItem{
			Path:          e.Path.String(),
			Type:          string(e.Type),
			Content:       e.Content,
			ParentHeading: e.ParentHeading,
			Depth:         depth,
		})
		dst = flattenOutline(dst, e.Children, depth+1)
	}
	return dst
}

func sectionOutput(s domain.SourceSection) ItemOutput {
	return ItemOutput{
		ID:            s.ID,
		SourceID:      s.SourceID,
		Content:       s.Content,
		Kind:          string(s.BlockType),
		ParentHeading: s.ParentHeading,
		StartLine:     s.StartLine,
		EndLine:       s.EndLine,
	}
}

func termOutput(t domain.GlossaryTerm) ItemOutput {
	return ItemOutput{
		ID:            t.ID,
		SourceID:      t.SourceID,
		Content:       t.Content(),
		Kind:          string(t.Pattern),
		ParentHeading: t.ParentHeading,
		Confidence:    t.Confidence,
	}
}
