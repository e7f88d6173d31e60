// Package tui provides an interactive terminal user interface for reviewing
// duplicate content before it is assembled into destination documents.
package tui

import (
	"github.com/custodia-labs/docmerge/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI calls.
type Ports struct {
	// Review lists groups and applies resolution actions.
	Review driving.ReviewService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Review == nil {
		return ErrMissingReviewService
	}
	return nil
}
