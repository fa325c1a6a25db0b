// Package styles holds the colour palette and lipgloss styles of the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette names the colours the interface is drawn with.
type Palette struct {
	Accent    lipgloss.Color // titles, selection background
	Reference lipgloss.Color // subtitles and citations
	Ink       lipgloss.Color // body text
	Faint     lipgloss.Color // hints, help, status text
	Rule      lipgloss.Color // input borders
	Bar       lipgloss.Color // status bar background
	Ok        lipgloss.Color
	Caution   lipgloss.Color // documents awaiting metadata
	Alert     lipgloss.Color
}

// LibraryPalette is the default palette: warm amber on a dark page with
// teal references.
func LibraryPalette() *Palette {
	return &Palette{
		Accent:    lipgloss.Color("#B45309"),
		Reference: lipgloss.Color("#0F766E"),
		Ink:       lipgloss.Color("#E7E5E4"),
		Faint:     lipgloss.Color("#78716C"),
		Rule:      lipgloss.Color("#57534E"),
		Bar:       lipgloss.Color("#1C1917"),
		Ok:        lipgloss.Color("#65A30D"),
		Caution:   lipgloss.Color("#EAB308"),
		Alert:     lipgloss.Color("#DC2626"),
	}
}

// Styles are the rendered styles shared by every view.
type Styles struct {
	palette *Palette

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Help       lipgloss.Style
	Selected   lipgloss.Style
	Citation   lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles builds styles from p, falling back to LibraryPalette.
func NewStyles(p *Palette) *Styles {
	if p == nil {
		p = LibraryPalette()
	}
	fg := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return &Styles{
		palette: p,

		Title:    fg(p.Accent).Bold(true),
		Subtitle: fg(p.Reference).Bold(true),
		Normal:   fg(p.Ink),
		Muted:    fg(p.Faint),
		Help:     fg(p.Faint).Italic(true),
		Selected: fg(p.Ink).Background(p.Accent).Bold(true),
		Citation: fg(p.Reference).Italic(true),
		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.Rule).
			Padding(0, 1),
		StatusBar: fg(p.Faint).Background(p.Bar).Padding(0, 1),

		Success: fg(p.Ok),
		Warning: fg(p.Caution),
		Error:   fg(p.Alert).Bold(true),
	}
}

// DefaultStyles returns styles for LibraryPalette.
func DefaultStyles() *Styles {
	return NewStyles(nil)
}

// Palette returns the palette the styles were built from.
func (s *Styles) Palette() *Palette {
	return s.palette
}
