// Package keymap defines the TUI keybindings and the help built from them.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the bindings shared by the views.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	Up     key.Binding
	Down   key.Binding
	Select key.Binding

	// Search view.
	Search    key.Binding
	NewSearch key.Binding
	Passage   key.Binding

	// Intake view and metadata form.
	Refresh   key.Binding
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
}

func binding(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: binding("q", "quit", "q", "ctrl+c"),
		Help: binding("?", "help", "?"),
		Back: binding("esc", "back", "esc"),

		Up:     binding("↑/k", "up", "up", "k"),
		Down:   binding("↓/j", "down", "down", "j"),
		Select: binding("enter", "select", "enter"),

		Search:    binding("enter", "ask the library", "enter"),
		NewSearch: binding("n, /", "new search", "n", "/"),
		Passage:   binding("enter", "passage", "enter"),

		Refresh:   binding("r", "refresh", "r"),
		NextField: binding("tab", "next field", "tab", "down"),
		PrevField: binding("shift+tab", "previous field", "shift+tab", "up"),
		Submit:    binding("ctrl+s", "submit metadata", "ctrl+s"),
	}
}

// ShortHelp is shown in the status bar when nothing more specific applies.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// ResultsHelp is shown while browsing search results.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.NewSearch, k.Up, k.Passage, k.Back}
}

// FormHelp is shown while editing document metadata.
func (k *KeyMap) FormHelp() []key.Binding {
	return []key.Binding{k.NextField, k.PrevField, k.Submit, k.Back}
}

// Section is a titled group of bindings on the help screen.
type Section struct {
	Title    string
	Bindings []key.Binding
}

// Sections returns the help screen contents, one section per view.
func (k *KeyMap) Sections() []Section {
	return []Section{
		{"Menu", []key.Binding{k.Up, k.Down, k.Select, k.Quit}},
		{"Search", []key.Binding{k.Search, k.Up, k.Down, k.Passage, k.NewSearch, k.Back}},
		{"Intake", []key.Binding{k.Up, k.Down, k.Select, k.Refresh, k.Back}},
		{"Metadata form", k.FormHelp()},
		{"Settings", []key.Binding{k.Up, k.Down, k.Select, k.Back}},
	}
}

// Matches reports whether keyStr is one of the binding's keys.
func Matches(keyStr string, b key.Binding) bool {
	for _, k := range b.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
