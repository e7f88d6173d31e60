// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docmerge/internal/adapters/driving/tui/styles"
)

// Entry is one reviewable section or glossary term.
type Entry struct {
	// GroupID is empty for items without a group.
	GroupID  string
	ID       string
	SourceID string
	Content  string
	Kind     string
}

// ItemList displays review entries in a navigable list, grouped by GroupID.
type ItemList struct {
	entries  []Entry
	visible  []int
	filter   string
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewItemList creates a new item list component.
func NewItemList(s *styles.Styles) *ItemList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ItemList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the item list.
func (l *ItemList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *ItemList) Update(msg tea.Msg) (*ItemList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		case "home", "g":
			l.selected = 0
		case "end", "G":
			if len(l.visible) > 0 {
				l.selected = len(l.visible) - 1
			}
		}
	}
	return l, nil
}

// View renders the list.
func (l *ItemList) View() string {
	if len(l.visible) == 0 {
		if l.filter != "" {
			return l.styles.Muted.Render(fmt.Sprintf("Nothing matches %q", l.filter))
		}
		return l.styles.Muted.Render("Nothing to review")
	}

	// Each entry takes two lines.
	visibleCount := (l.height - 2) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if l.selected >= visibleCount {
		start = l.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(l.visible) {
		end = len(l.visible)
	}

	lines := make([]string, 0, (end-start)*3)
	prevGroup := ""
	for i := start; i < end; i++ {
		e := &l.entries[l.visible[i]]
		if e.GroupID != "" && (i == start || e.GroupID != prevGroup) {
			lines = append(lines, l.styles.GroupHeader.Render("Group "+shortID(e.GroupID)))
		}
		prevGroup = e.GroupID
		lines = append(lines, l.renderEntry(i, e))
	}

	return strings.Join(lines, "\n")
}

func (l *ItemList) renderEntry(index int, e *Entry) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	maxLen := l.width - 6
	if maxLen < 20 {
		maxLen = 20
	}
	content := truncate(flatten(e.Content), maxLen)

	var first string
	if index == l.selected {
		first = l.styles.Selected.Render(indicator + content)
	} else {
		first = l.styles.Normal.Render(indicator + content)
	}

	meta := "    " + l.styles.Subtitle.Render(e.SourceID)
	if e.Kind != "" {
		meta += " " + l.styles.Kind.Render(e.Kind)
	}
	meta += " " + l.styles.Muted.Render(shortID(e.ID))

	return first + "\n" + meta
}

// SetEntries replaces the entries and reapplies the current filter.
func (l *ItemList) SetEntries(entries []Entry) {
	l.entries = entries
	l.applyFilter()
}

// Entries returns all entries, ignoring the filter.
func (l *ItemList) Entries() []Entry {
	return l.entries
}

// SetFilter keeps only entries whose content or source contains text.
func (l *ItemList) SetFilter(text string) {
	l.filter = strings.ToLower(strings.TrimSpace(text))
	l.applyFilter()
}

// Filter returns the active filter.
func (l *ItemList) Filter() string {
	return l.filter
}

func (l *ItemList) applyFilter() {
	l.visible = l.visible[:0]
	for i, e := range l.entries {
		if l.filter == "" ||
			strings.Contains(strings.ToLower(e.Content), l.filter) ||
			strings.Contains(strings.ToLower(e.SourceID), l.filter) {
			l.visible = append(l.visible, i)
		}
	}
	if l.selected >= len(l.visible) {
		l.selected = len(l.visible) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

// Selected returns the index of the selected entry among visible entries.
func (l *ItemList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index.
func (l *ItemList) SetSelected(index int) {
	if index >= 0 && index < len(l.visible) {
		l.selected = index
	}
}

// SelectedEntry returns the entry under the cursor, or nil if none.
func (l *ItemList) SelectedEntry() *Entry {
	if len(l.visible) == 0 {
		return nil
	}
	return &l.entries[l.visible[l.selected]]
}

// GroupMembers returns the ids of every entry in a group, filtered or not.
func (l *ItemList) GroupMembers(groupID string) []string {
	if groupID == "" {
		return nil
	}
	var ids []string
	for _, e := range l.entries {
		if e.GroupID == groupID {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// MoveUp moves selection up.
func (l *ItemList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *ItemList) MoveDown() {
	if l.selected < len(l.visible)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *ItemList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of visible entries.
func (l *ItemList) Count() int {
	return len(l.visible)
}

// IsEmpty returns whether no entries are visible.
func (l *ItemList) IsEmpty() bool {
	return len(l.visible) == 0
}

func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// shortID keeps the first eight characters of an id.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
