// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

//nolint:gosec // G101: config key name, not a credential.
const apiKeyKey = "embedding.api_key"

// View lists every settings key and edits one value at a time.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings *domain.AppSettings
	values   map[string]string
	keys     []string
	invalid  error
	err      error
	message  string

	selected int
	editing  bool
	field    *input.Field

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:          s,
		settingsService: settingsService,
		field:           input.NewField(s, "Value: ", "", 512),
		width:           80,
		height:          24,
	}
}

// Init loads the settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		settings, err := svc.Get()
		if err != nil {
			return messages.SettingsLoaded{Err: err}
		}
		return messages.SettingsLoaded{
			Settings: settings,
			Keys:     svc.Keys(),
			Invalid:  svc.Validate(),
		}
	}
}

func (v *View) saveSetting(key, value string) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Key: key, Err: ErrNoSettingsService}
		}
		return messages.SettingsSaved{Key: key, Err: svc.Set(key, value)}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		v.err = msg.Err
		if msg.Err != nil {
			return v, nil
		}
		v.settings = msg.Settings
		v.values = msg.Settings.Values()
		v.keys = msg.Keys
		v.invalid = msg.Invalid
		if v.selected >= len(v.keys) {
			v.selected = 0
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.editing = false
		v.field.Blur()
		v.message = "Saved " + msg.Key
		return v, v.loadSettings()

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKey(msg)
		}
		return v.handleListKey(msg)
	}

	return v, nil
}

func (v *View) handleListKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.keys)-1 {
			v.selected++
		}
	case "enter":
		if len(v.keys) == 0 {
			return v, nil
		}
		return v, v.startEdit(v.keys[v.selected])
	}
	return v, nil
}

func (v *View) handleEditKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.editing = false
		v.err = nil
		v.field.Blur()
		return v, nil
	case tea.KeyEnter:
		return v, v.saveSetting(v.SelectedKey(), parseInput(v.field.Value()))
	}

	var cmd tea.Cmd
	v.field, cmd = v.field.Update(msg)
	return v, cmd
}

func (v *View) startEdit(key string) tea.Cmd {
	v.editing = true
	v.message = ""
	v.err = nil

	// The stored API key is never echoed back into the field.
	value := v.values[key]
	if key == apiKeyKey {
		value = ""
	}
	v.field.SetValue(value)
	return v.field.Focus()
}

// parseInput trims the value and unquotes it when it is a Go string literal,
// so escapes such as "\n" can be typed.
func parseInput(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		if unquoted, err := strconv.Unquote(value); err == nil {
			return unquoted
		}
	}
	return value
}

// View renders the settings view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("Settings"), ""}

	if v.settings == nil && v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	width := 0
	for _, k := range v.keys {
		if len(k) > width {
			width = len(k)
		}
	}

	for i, k := range v.keys {
		line := fmt.Sprintf("%-*s  %s", width, k, v.displayValue(k))
		if i == v.selected {
			sections = append(sections, v.styles.Selected.Render("> "+line))
			continue
		}
		sections = append(sections, v.styles.Normal.Render("  "+line))
	}
	sections = append(sections, "")

	if v.editing {
		sections = append(sections, v.styles.Subtitle.Render(v.SelectedKey()), v.field.View(), "")
	}

	switch {
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	case v.invalid != nil:
		sections = append(sections, v.styles.Warning.Render("Invalid: "+v.invalid.Error()))
	case v.message != "":
		sections = append(sections, v.styles.Success.Render(v.message))
	default:
		sections = append(sections, v.styles.Success.Render("Configuration valid"))
	}

	help := "[j/k] Navigate  [enter] Edit  [esc] Back"
	if v.editing {
		help = "[enter] Save  [esc] Cancel"
	}
	sections = append(sections, "", v.styles.Help.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) displayValue(key string) string {
	value := v.values[key]
	if key == apiKeyKey {
		return maskAPIKey(value)
	}
	if value == "" {
		return v.styles.Muted.Render("(not set)")
	}
	return value
}

func maskAPIKey(key string) string {
	switch {
	case key == "":
		return "(not set)"
	case len(key) <= 8:
		return "****"
	default:
		return key[:4] + "..." + key[len(key)-4:]
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.field.SetWidth(width)
}

// Reset leaves edit mode and clears transient messages.
func (v *View) Reset() {
	v.editing = false
	v.err = nil
	v.message = ""
	v.field.Blur()
}

// SelectedKey returns the highlighted settings key.
func (v *View) SelectedKey() string {
	if v.selected < 0 || v.selected >= len(v.keys) {
		return ""
	}
	return v.keys[v.selected]
}

// Editing reports whether a value is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Settings returns the loaded settings.
func (v *View) Settings() *domain.AppSettings {
	return v.settings
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}
