package mcp

import (
	"github.com/custodia-labs/docmerge/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Review exposes similarity groups and resolution.
	Review driving.ReviewService

	// Assembly exposes destination documents.
	Assembly driving.AssemblyService

	// Draft proposes merged text for a group. Optional.
	Draft driving.DraftService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Review == nil {
		return ErrMissingReviewService
	}
	// Assembly is optional; the outline tool and destination resources need it
	return nil
}
