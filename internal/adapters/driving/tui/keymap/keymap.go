// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// Select confirms a selection.
	Select key.Binding

	// Resolve marks the selected item resolved.
	Resolve key.Binding

	// ResolveGroup marks every member of the selected group resolved.
	ResolveGroup key.Binding

	// Pop removes the selected item from its group.
	Pop key.Binding

	// Reject deletes the selected glossary term.
	Reject key.Binding

	// ToggleTerms switches between sections and glossary terms.
	ToggleTerms key.Binding

	// Filter focuses the filter input.
	Filter key.Binding

	// Reload refreshes the list from the session.
	Reload key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Resolve: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "resolve"),
		),
		ResolveGroup: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "resolve group"),
		),
		Pop: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pop"),
		),
		Reject: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "reject term"),
		),
		ToggleTerms: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "sections/terms"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reload"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// GroupsHelp returns keybindings for the groups view.
func (k *KeyMap) GroupsHelp() []key.Binding {
	return []key.Binding{k.Resolve, k.ResolveGroup, k.Pop, k.ToggleTerms, k.Back}
}

// UniqueHelp returns keybindings for the unique items view.
func (k *KeyMap) UniqueHelp() []key.Binding {
	return []key.Binding{k.Resolve, k.ToggleTerms, k.Filter, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Resolve, k.ResolveGroup, k.Pop, k.Reject},
		{k.ToggleTerms, k.Filter, k.Reload},
		{k.Back, k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
