// Package status renders the one-line status bar at the bottom of the views.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
)

// State selects what the left side of the bar says and which key hints
// the right side shows.
type State string

// Bar states.
const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateResults   State = "results"
	StateEditing   State = "editing"
	StateError     State = "error"
)

const defaultWidth = 80

// Bar shows the query or intake status on the left and key hints on the right.
type Bar struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	state   State
	message string
	results int
	pending int
	width   int
}

// NewBar creates a bar in StateReady. Nil arguments use the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: defaultWidth}
}

// View renders the bar padded to its width.
func (s *Bar) View() string {
	left := strings.Join(s.segments(), s.styles.Muted.Render("  "))
	right := s.hints()

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *Bar) segments() []string {
	var segs []string
	switch s.state {
	case StateSearching:
		return []string{s.styles.Muted.Render("Searching the library...")}
	case StateError:
		if s.message == "" {
			return []string{s.styles.Error.Render("Error")}
		}
		return []string{s.styles.Error.Render("Error: " + s.message)}
	case StateEditing:
		segs = append(segs, s.styles.Normal.Render("Editing metadata"))
	default:
		if s.results > 0 {
			segs = append(segs, s.styles.Normal.Render(plural(s.results, "result")))
		} else {
			segs = append(segs, s.styles.Muted.Render("Ready"))
		}
	}

	if s.message != "" {
		segs = append(segs, s.styles.Muted.Render(s.message))
	}
	if s.pending > 0 {
		segs = append(segs, s.styles.Warning.Render(fmt.Sprintf("%d awaiting metadata", s.pending)))
	}
	return segs
}

func (s *Bar) hints() string {
	var bindings []key.Binding
	switch {
	case s.state == StateEditing:
		bindings = s.keymap.FormHelp()
	case s.state == StateResults && s.results > 0:
		bindings = s.keymap.ResultsHelp()
	default:
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// SetState sets the bar state.
func (s *Bar) SetState(state State) { s.state = state }

// State returns the bar state.
func (s *Bar) State() State { return s.state }

// SetMessage sets the free-form message. In StateError it is the error text.
func (s *Bar) SetMessage(message string) { s.message = message }

// Message returns the current message.
func (s *Bar) Message() string { return s.message }

// SetResultCount sets how many results the last query returned.
func (s *Bar) SetResultCount(n int) { s.results = n }

// ResultCount returns the last result count.
func (s *Bar) ResultCount() int { return s.results }

// SetPending sets how many documents are waiting for metadata.
func (s *Bar) SetPending(n int) { s.pending = n }

// Pending returns how many documents are waiting for metadata.
func (s *Bar) Pending() int { return s.pending }

// SetWidth sets the rendered width.
func (s *Bar) SetWidth(width int) { s.width = width }

// Width returns the rendered width.
func (s *Bar) Width() int { return s.width }

// Clear returns the bar to StateReady without a message or results.
// The pending count is kept.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.results = 0
}
