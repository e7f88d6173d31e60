package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for docmerge resources.
	uriScheme = "docmerge://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "destinations",
		Name:        "destinations",
		Description: "Destination documents being assembled",
		MIMEType:    "application/json",
	}, s.handleDestinationsResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "glossary",
		Name:        "glossary",
		Description: "Resolved glossary terms",
		MIMEType:    "application/json",
	}, s.handleGlossaryResource)

	// The uri segment is path-escaped so file paths fit in one segment.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "published/{uri}",
		Name:        "published-destination",
		Description: "Markdown of a destination document with its glossary",
		MIMEType:    "text/markdown",
	}, s.handlePublishedResource)
}

func (s *Server) handleDestinationsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Assembly == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	docs, err := s.ports.Assembly.ListDestinations(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing destinations: %w", err)
	}

	type destinationInfo struct {
		URI     string `json:"uri"`
		Title   string `json:"title,omitempty"`
		Unsaved bool   `json:"unsaved"`
		Blocks  int    `json:"blocks"`
	}

	infos := make([]destinationInfo, len(docs))
	for i, d := range docs {
		infos[i] = destinationInfo{URI: d.URI, Title: d.Title, Unsaved: d.Unsaved}
		if d.Tree != nil {
			infos[i].Blocks = len(d.Tree.Children)
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling destinations: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

func (s *Server) handleGlossaryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	terms, err := s.ports.Review.CanonicalTerms(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing glossary: %w", err)
	}

	type termInfo struct {
		Term       string `json:"term"`
		Definition string `json:"definition"`
	}

	infos := make([]termInfo, len(terms))
	for i, t := range terms {
		infos[i] = termInfo{Term: t.Term, Definition: t.Definition}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling glossary: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

func (s *Server) handlePublishedResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Assembly == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	uri := extractDestinationURI(req.Params.URI)
	if uri == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	text, err := s.ports.Assembly.Publish(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("publishing %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     text,
		}},
	}, nil
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractDestinationURI extracts the destination uri from a resource URI
// like docmerge://published/{uri}, undoing path escaping.
func extractDestinationURI(uri string) string {
	const prefix = uriScheme + "published/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	escaped := strings.TrimPrefix(uri, prefix)
	dest, err := url.PathUnescape(escaped)
	if err != nil {
		return ""
	}
	return dest
}

// PublishedResourceURI returns the resource URI for a destination document.
func PublishedResourceURI(destinationURI string) string {
	return uriScheme + "published/" + url.PathEscape(destinationURI)
}
