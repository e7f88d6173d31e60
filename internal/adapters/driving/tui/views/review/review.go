// Package review provides the duplicate review view for the TUI.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docmerge/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docmerge/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/docmerge/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docmerge/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docmerge/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docmerge/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driving"
)

// errNoReviewService is reported when the view has no service to call.
var errNoReviewService = errors.New("review service not available")

// Mode selects what the view lists.
type Mode int

const (
	// ModeGroups lists groups of near-duplicates.
	ModeGroups Mode = iota
	// ModeUnique lists items without a group partner.
	ModeUnique
)

// View lists review items and applies resolution actions to them.
type View struct {
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	review driving.ReviewService

	mode       Mode
	terms      bool
	list       *list.ItemList
	filter     *input.FilterInput
	bar        *status.Bar
	groupCount int

	width   int
	height  int
	ready   bool
	loading bool
	err     error
}

// NewView creates a review view in the given mode.
func NewView(s *styles.Styles, km *keymap.KeyMap, review driving.ReviewService, mode Mode) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		ctx:    context.Background(),
		styles: s,
		keymap: km,
		review: review,
		mode:   mode,
		list:   list.NewItemList(s),
		filter: input.NewFilterInput(s),
		bar:    status.NewBar(s, km),
		width:  80,
		height: 24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the items for the current mode.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.bar.SetState(status.StateLoading)
	return v.load()
}

// Reset clears the filter and any error before the view is shown again.
func (v *View) Reset() {
	v.filter.Reset()
	v.list.SetFilter("")
	v.bar.SetMessage("")
	v.err = nil
}

func (v *View) load() tea.Cmd {
	ctx, review, mode, terms := v.ctx, v.review, v.mode, v.terms
	return func() tea.Msg {
		if review == nil {
			return messages.ErrorOccurred{Err: errNoReviewService}
		}
		if mode == ModeGroups {
			msg := messages.GroupsLoaded{Terms: terms}
			if terms {
				msg.TermGroups, msg.Err = review.GetTermGroups(ctx)
			} else {
				msg.Sections, msg.Err = review.GetSimilarityGroups(ctx)
			}
			return msg
		}
		msg := messages.UniqueLoaded{Terms: terms}
		if terms {
			msg.TermItems, msg.Err = review.GetUniqueTerms(ctx)
		} else {
			msg.Sections, msg.Err = review.GetUniqueSections(ctx)
		}
		return msg
	}
}

// Update handles messages for the review view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.filter.Focused() {
			return v.handleFilterKey(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.GroupsLoaded:
		if v.mode != ModeGroups || msg.Terms != v.terms {
			return v, nil
		}
		v.loading = false
		if msg.Err != nil {
			v.setErr(msg.Err)
			return v, nil
		}
		v.setGroups(msg)
		return v, nil

	case messages.UniqueLoaded:
		if v.mode != ModeUnique || msg.Terms != v.terms {
			return v, nil
		}
		v.loading = false
		if msg.Err != nil {
			v.setErr(msg.Err)
			return v, nil
		}
		v.setUnique(msg)
		return v, nil

	case messages.ItemsResolved:
		return v.afterAction(msg.Err, fmt.Sprintf("Resolved %d", len(msg.IDs)))

	case messages.ItemPopped:
		return v.afterAction(msg.Err, "Popped "+msg.ID)

	case messages.TermRejected:
		return v.afterAction(msg.Err, "Rejected "+msg.ID)

	case messages.ErrorOccurred:
		v.loading = false
		v.setErr(msg.Err)
		return v, nil
	}

	return v, nil
}

func (v *View) handleFilterKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.filter.Reset()
		v.list.SetFilter("")
		return v, nil
	case tea.KeyEnter:
		v.filter.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.filter, cmd = v.filter.Update(msg)
	v.list.SetFilter(v.filter.Value())
	v.syncBar()
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()
	selected := v.list.SelectedEntry()

	switch {
	case keymap.Matches(keyStr, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(keyStr, v.keymap.Help):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHelp}
		}

	case keyStr == "q":
		return v, tea.Quit

	case keymap.Matches(keyStr, v.keymap.ToggleTerms):
		v.terms = !v.terms
		v.list.SetEntries(nil)
		return v, v.Init()

	case keymap.Matches(keyStr, v.keymap.Reload):
		return v, v.Init()

	case keymap.Matches(keyStr, v.keymap.Filter):
		return v, v.filter.Focus()

	case keymap.Matches(keyStr, v.keymap.Resolve):
		if selected != nil {
			return v, v.resolve([]string{selected.ID})
		}

	case keymap.Matches(keyStr, v.keymap.ResolveGroup):
		if selected != nil && v.mode == ModeGroups {
			return v, v.resolve(v.list.GroupMembers(selected.GroupID))
		}

	case keymap.Matches(keyStr, v.keymap.Pop):
		if selected != nil && v.mode == ModeGroups {
			return v, v.pop(selected.ID)
		}

	case keymap.Matches(keyStr, v.keymap.Reject):
		if selected != nil && v.terms {
			return v, v.reject(selected.ID)
		}

	default:
		v.list, _ = v.list.Update(msg)
	}

	return v, nil
}

func (v *View) resolve(ids []string) tea.Cmd {
	ctx, review := v.ctx, v.review
	return func() tea.Msg {
		if review == nil {
			return messages.ItemsResolved{IDs: ids, Err: errNoReviewService}
		}
		return messages.ItemsResolved{IDs: ids, Err: review.MarkManyResolved(ctx, ids)}
	}
}

func (v *View) pop(id string) tea.Cmd {
	ctx, review := v.ctx, v.review
	return func() tea.Msg {
		if review == nil {
			return messages.ItemPopped{ID: id, Err: errNoReviewService}
		}
		return messages.ItemPopped{ID: id, Err: review.PopFromGroup(ctx, id)}
	}
}

func (v *View) reject(id string) tea.Cmd {
	ctx, review := v.ctx, v.review
	return func() tea.Msg {
		if review == nil {
			return messages.TermRejected{ID: id, Err: errNoReviewService}
		}
		return messages.TermRejected{ID: id, Err: review.RejectTerm(ctx, id)}
	}
}

func (v *View) afterAction(err error, done string) (*View, tea.Cmd) {
	if err != nil {
		v.setErr(err)
		return v, nil
	}
	v.err = nil
	v.bar.SetMessage(done)
	return v, v.load()
}

func (v *View) setErr(err error) {
	v.err = err
	v.bar.SetState(status.StateError)
	v.bar.SetMessage(err.Error())
}

func (v *View) setGroups(msg messages.GroupsLoaded) {
	var entries []list.Entry
	if msg.Terms {
		v.groupCount = len(msg.TermGroups)
		for _, g := range msg.TermGroups {
			for _, m := range g.Members {
				entries = append(entries, termEntry(g.ID, m))
			}
		}
	} else {
		v.groupCount = len(msg.Sections)
		for _, g := range msg.Sections {
			for _, m := range g.Members {
				entries = append(entries, sectionEntry(g.ID, m))
			}
		}
	}
	v.list.SetEntries(entries)
	v.err = nil
	v.syncBar()
}

func (v *View) setUnique(msg messages.UniqueLoaded) {
	var entries []list.Entry
	if msg.Terms {
		for _, t := range msg.TermItems {
			entries = append(entries, termEntry("", t))
		}
	} else {
		for _, s := range msg.Sections {
			entries = append(entries, sectionEntry("", s))
		}
	}
	v.list.SetEntries(entries)
	v.err = nil
	v.syncBar()
}

func (v *View) syncBar() {
	if v.err != nil {
		return
	}
	v.bar.SetTerms(v.terms)
	if v.mode == ModeGroups {
		v.bar.SetState(status.StateGroups)
		v.bar.SetCount(v.groupCount)
	} else {
		v.bar.SetState(status.StateUnique)
		v.bar.SetCount(v.list.Count())
	}
}

func sectionEntry(groupID string, s domain.SourceSection) list.Entry {
	return list.Entry{
		GroupID:  groupID,
		ID:       s.ID,
		SourceID: s.SourceID,
		Content:  s.Content,
		Kind:     string(s.BlockType),
	}
}

func termEntry(groupID string, t domain.GlossaryTerm) list.Entry {
	return list.Entry{
		GroupID:  groupID,
		ID:       t.ID,
		SourceID: t.SourceID,
		Content:  t.Content(),
		Kind:     string(t.Pattern),
	}
}

// View renders the review view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render(v.Title()))
	b.WriteString("\n\n")

	if v.filter.Focused() || v.filter.Value() != "" {
		b.WriteString(v.filter.View())
		b.WriteString("\n\n")
	}

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading..."))
	} else {
		b.WriteString(v.list.View())
	}
	b.WriteString("\n\n")
	b.WriteString(v.bar.View())

	return b.String()
}

// Title names what the view currently lists.
func (v *View) Title() string {
	noun := "sections"
	if v.terms {
		noun = "terms"
	}
	if v.mode == ModeGroups {
		return "Similar " + noun
	}
	return "Unique " + noun
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	// Title, filter and status bar take eight lines.
	v.list.SetDimensions(width, height-8)
	v.filter.SetWidth(width)
	v.bar.SetWidth(width)
}

// Terms returns whether glossary terms are listed instead of sections.
func (v *View) Terms() bool {
	return v.terms
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Entries returns the loaded entries.
func (v *View) Entries() []list.Entry {
	return v.list.Entries()
}
