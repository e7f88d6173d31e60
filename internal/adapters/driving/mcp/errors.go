// Package mcp provides an MCP (Model Context Protocol) server adapter for docmerge.
// It lets AI assistants review duplicate groups and inspect destination documents.
package mcp

import "errors"

// ErrMissingReviewService is returned when the review service is not provided.
var ErrMissingReviewService = errors.New("mcp: review service is required")

// ErrMissingAssemblyService is returned by tools that need the assembly service.
var ErrMissingAssemblyService = errors.New("mcp: assembly service is not configured")

// ErrMissingDraftService is returned by draft_merge when drafting is not configured.
var ErrMissingDraftService = errors.New("mcp: draft service is not configured")
