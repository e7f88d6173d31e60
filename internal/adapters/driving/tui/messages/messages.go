// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/docmerge/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewGroups lists groups of near-duplicates.
	ViewGroups
	// ViewUnique lists items without a near-duplicate.
	ViewUnique
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewGroups:
		return "groups"
	case ViewUnique:
		return "unique"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// GroupsLoaded carries unresolved groups. Terms selects which slice is set.
type GroupsLoaded struct {
	Terms      bool
	Sections   []domain.SimilarityGroup
	TermGroups []domain.TermGroup
	Err        error
}

// UniqueLoaded carries unresolved items that have no group partner.
type UniqueLoaded struct {
	Terms     bool
	Sections  []domain.SourceSection
	TermItems []domain.GlossaryTerm
	Err       error
}

// ItemsResolved signals that items were marked resolved.
type ItemsResolved struct {
	IDs []string
	Err error
}

// ItemPopped signals that an item left its group.
type ItemPopped struct {
	ID  string
	Err error
}

// TermRejected signals that a glossary term was removed.
type TermRejected struct {
	ID  string
	Err error
}
