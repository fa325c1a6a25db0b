// Package menu is the start screen of the TUI.
package menu

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
)

// Item is one entry of the menu. Items without a View quit the app.
type Item struct {
	Label string
	Hint  string
	View  messages.ViewType
	Quit  bool
}

// Items returns the menu entries in display order.
func Items() []Item {
	return []Item{
		{Label: "Search", Hint: "ask the library, get cited passages", View: messages.ViewSearch},
		{Label: "Intake", Hint: "documents waiting for metadata", View: messages.ViewIntake},
		{Label: "Settings", Hint: "embedding, store and extraction options", View: messages.ViewSettings},
		{Label: "Help", Hint: "keybindings", View: messages.ViewHelp},
		{Label: "Quit", Quit: true},
	}
}

// View is the menu screen. It also shows how many documents wait for
// metadata next to the Intake entry.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	items    []Item
	selected int
	pending  int
	width    int
	height   int
	ready    bool
}

// NewView creates the menu. Nil arguments use the defaults.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles: s,
		keymap: km,
		items:  Items(),
		width:  80,
		height: 24,
	}
}

// Init implements the view contract; the menu loads nothing.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles navigation keys, digit shortcuts and pending counts.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case messages.PendingLoaded:
		v.pending = len(msg.Paths)
	case tea.KeyMsg:
		return v, v.handleKey(msg.String())
	}
	return v, nil
}

func (v *View) handleKey(k string) tea.Cmd {
	switch {
	case keymap.Matches(k, v.keymap.Up):
		v.selected = max(v.selected-1, 0)
	case keymap.Matches(k, v.keymap.Down):
		v.selected = min(v.selected+1, len(v.items)-1)
	case keymap.Matches(k, v.keymap.Select):
		return v.choose()
	case keymap.Matches(k, v.keymap.Quit):
		return tea.Quit
	default:
		if n, err := strconv.Atoi(k); err == nil && n >= 1 && n <= len(v.items) {
			v.selected = n - 1
			return v.choose()
		}
	}
	return nil
}

func (v *View) choose() tea.Cmd {
	item := v.items[v.selected]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg { return messages.ViewChanged{View: item.View} }
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("folio"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Personal research library"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		label := fmt.Sprintf("%d  %-9s", i+1, item.Label)
		if i == v.selected {
			b.WriteString("> " + v.styles.Selected.Render(label))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(label))
		}
		if item.Hint != "" {
			b.WriteString(" " + v.styles.Muted.Render(item.Hint))
		}
		if item.View == messages.ViewIntake && v.pending > 0 {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf("  (%d awaiting metadata)", v.pending)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] move  [enter or 1-5] open  [q] quit"))
	return b.String()
}

// SetDimensions sets the view size and marks it ready.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Pending returns the awaiting-metadata count shown next to Intake.
func (v *View) Pending() int {
	return v.pending
}

// Selected returns the highlighted item index.
func (v *View) Selected() int {
	return v.selected
}
