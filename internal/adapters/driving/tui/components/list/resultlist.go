// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/core/domain"
)

// ResultList displays cited results in a navigable list.
// The selected result can be expanded to show its whole passage.
type ResultList struct {
	results  []domain.CitedResult
	selected int
	expanded bool
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the result list.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results")
	}

	if r.expanded {
		return r.renderPassage(&r.results[r.selected])
	}

	lines := make([]string, 0, len(r.results)+2)
	header := r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.results)))
	lines = append(lines, header, "")

	// Each result renders as two lines plus a blank.
	visibleCount := (r.height - 4) / 3
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(r.results) {
		end = len(r.results)
	}

	for i := start; i < end; i++ {
		lines = append(lines, r.renderResult(i, &r.results[i]))
	}

	return strings.Join(lines, "\n")
}

// renderResult formats one result as its citation and a preview line.
func (r *ResultList) renderResult(index int, result *domain.CitedResult) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	maxLen := r.width - 16
	if maxLen < 10 {
		maxLen = 10
	}
	citation := truncate(result.Citation, maxLen)
	distance := fmt.Sprintf("%.3f", result.Record.Distance)

	var citationLine string
	if index == r.selected {
		citationLine = r.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxLen, citation, distance))
	} else {
		citationLine = r.styles.Citation.Render(fmt.Sprintf("%s%-*s  ", indicator, maxLen, citation)) +
			r.styles.Muted.Render(distance)
	}

	preview := truncate(strings.Join(strings.Fields(result.Record.Contents), " "), r.width-6)
	previewLine := r.styles.Muted.Render("    " + preview)

	return citationLine + "\n" + previewLine + "\n"
}

// renderPassage shows the full contents of one result, wrapped to the width.
func (r *ResultList) renderPassage(result *domain.CitedResult) string {
	header := r.styles.Citation.Render(result.Citation)
	body := lipgloss.NewStyle().Width(r.width - 4).Render(result.Record.Contents)
	return header + "\n\n" + r.styles.Normal.Render(body)
}

func truncate(s string, n int) string {
	if n < 4 {
		n = 4
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// SetResults updates the result list.
func (r *ResultList) SetResults(results []domain.CitedResult) {
	r.results = results
	r.selected = 0
	r.expanded = false
}

// Results returns the current results.
func (r *ResultList) Results() []domain.CitedResult {
	return r.results
}

// Selected returns the index of the selected result.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.results) {
		r.selected = index
	}
}

// SelectedResult returns the currently selected result, or nil if none.
func (r *ResultList) SelectedResult() *domain.CitedResult {
	if len(r.results) == 0 || r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// ToggleExpanded switches between the list and the selected passage.
func (r *ResultList) ToggleExpanded() {
	if len(r.results) == 0 {
		r.expanded = false
		return
	}
	r.expanded = !r.expanded
}

// Expanded reports whether the selected passage is shown in full.
func (r *ResultList) Expanded() bool {
	return r.expanded
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.results)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Width returns the current width.
func (r *ResultList) Width() int {
	return r.width
}

// Height returns the current height.
func (r *ResultList) Height() int {
	return r.height
}

// Count returns the number of results.
func (r *ResultList) Count() int {
	return len(r.results)
}

// IsEmpty returns whether the list is empty.
func (r *ResultList) IsEmpty() bool {
	return len(r.results) == 0
}
