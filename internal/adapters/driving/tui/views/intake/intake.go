// Package intake provides the view for documents waiting in the intake directory.
//
// It lists the documents parked for metadata, lets the user fill in the
// bibliographic fields through a small form, and keeps a short log of
// recently finished ingestions.
package intake

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// PollInterval is how often the pending list is refreshed.
const PollInterval = 2 * time.Second

// maxReports bounds the recent-ingestions log.
const maxReports = 8

// Form field indexes.
const (
	fieldTitle = iota
	fieldAuthors
	fieldPublisher
	fieldDate
	fieldCount
)

// View lists pending documents and edits their metadata.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	ingestion driving.IngestionOrchestrator
	statusbar *status.Bar
	ctx       context.Context

	pending  []string
	selected int
	reports  []domain.IngestionReport

	// editing is the path whose metadata form is open, empty otherwise.
	editing string
	fields  []*input.Field
	focus   int

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new intake view.
func NewView(s *styles.Styles, km *keymap.KeyMap, ingestion driving.IngestionOrchestrator) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	fields := make([]*input.Field, fieldCount)
	fields[fieldTitle] = input.NewField(s, "Title:     ", "required", 256)
	fields[fieldAuthors] = input.NewField(s, "Authors:   ", "Smith, Jones", 256)
	fields[fieldPublisher] = input.NewField(s, "Publisher: ", "", 256)
	fields[fieldDate] = input.NewField(s, "Published: ", "2020", 32)

	return &View{
		styles:    s,
		keymap:    km,
		ingestion: ingestion,
		statusbar: status.NewBar(s, km),
		ctx:       context.Background(),
		fields:    fields,
		width:     80,
		height:    24,
	}
}

// WithContext sets the context used for metadata submission.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the pending list.
func (v *View) Init() tea.Cmd {
	return LoadPending(v.ingestion)
}

// LoadPending returns a command reading the pending paths from the orchestrator.
func LoadPending(ingestion driving.IngestionOrchestrator) tea.Cmd {
	return func() tea.Msg {
		if ingestion == nil {
			return messages.PendingLoaded{}
		}
		return messages.PendingLoaded{Paths: ingestion.Pending()}
	}
}

// Tick schedules the next pending poll.
func Tick() tea.Cmd {
	return tea.Tick(PollInterval, func(time.Time) tea.Msg {
		return messages.PendingTick{}
	})
}

// Update handles messages for the intake view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.PendingLoaded:
		v.setPending(msg.Paths)
		return v, nil

	case messages.IngestionReported:
		v.addReport(msg.Report)
		return v, LoadPending(v.ingestion)

	case messages.MetadataSubmitted:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.closeForm()
		v.err = nil
		v.statusbar.SetState(status.StateReady)
		v.statusbar.SetMessage("Metadata submitted for " + filepath.Base(msg.Path))
		return v, LoadPending(v.ingestion)

	case tea.KeyMsg:
		if v.Editing() {
			return v.handleFormKey(msg)
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
		if v.selected < len(v.pending)-1 {
			v.selected++
		}
	case "r":
		return v, LoadPending(v.ingestion)
	case "enter":
		if len(v.pending) == 0 {
			return v, nil
		}
		return v, v.openForm(v.pending[v.selected])
	}
	return v, nil
}

func (v *View) handleFormKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	switch {
	case msg.Type == tea.KeyEsc:
		v.closeForm()
		v.statusbar.SetState(status.StateReady)
		v.statusbar.SetMessage("")
		return v, nil
	case keymap.Matches(key, v.keymap.Submit):
		return v, v.submit()
	case msg.Type == tea.KeyEnter:
		if v.focus == fieldCount-1 {
			return v, v.submit()
		}
		return v, v.moveFocus(1)
	case keymap.Matches(key, v.keymap.NextField):
		return v, v.moveFocus(1)
	case keymap.Matches(key, v.keymap.PrevField):
		return v, v.moveFocus(-1)
	}

	var cmd tea.Cmd
	v.fields[v.focus], cmd = v.fields[v.focus].Update(msg)
	return v, cmd
}

// openForm starts editing the metadata of path.
func (v *View) openForm(path string) tea.Cmd {
	v.editing = path
	v.err = nil
	for _, f := range v.fields {
		f.Reset()
		f.Blur()
	}
	v.focus = fieldTitle
	v.statusbar.SetState(status.StateEditing)
	return v.fields[fieldTitle].Focus()
}

func (v *View) closeForm() {
	v.editing = ""
	for _, f := range v.fields {
		f.Blur()
	}
}

func (v *View) moveFocus(delta int) tea.Cmd {
	v.fields[v.focus].Blur()
	v.focus = (v.focus + delta + fieldCount) % fieldCount
	return v.fields[v.focus].Focus()
}

// Metadata returns the form contents with surrounding whitespace trimmed.
func (v *View) Metadata() domain.DocumentMetadata {
	value := func(i int) string { return strings.TrimSpace(v.fields[i].Value()) }
	return domain.DocumentMetadata{
		Title:         value(fieldTitle),
		Authors:       value(fieldAuthors),
		Publisher:     value(fieldPublisher),
		DatePublished: value(fieldDate),
	}
}

// submit validates the form and hands the metadata to the orchestrator.
func (v *View) submit() tea.Cmd {
	meta := v.Metadata()
	if err := meta.Validate(); err != nil {
		v.setError(fmt.Errorf("title is required: %w", err))
		return nil
	}

	path := v.editing
	ingestion := v.ingestion
	ctx := v.ctx
	return func() tea.Msg {
		if ingestion == nil {
			return messages.MetadataSubmitted{Path: path, Err: ErrNoIngestion}
		}
		err := ingestion.SubmitMetadata(ctx, path, meta)
		return messages.MetadataSubmitted{Path: path, Err: err}
	}
}

func (v *View) setPending(paths []string) {
	v.pending = paths
	if v.selected >= len(paths) {
		v.selected = len(paths) - 1
	}
	if v.selected < 0 {
		v.selected = 0
	}
	v.statusbar.SetPending(len(paths))
}

func (v *View) addReport(r domain.IngestionReport) {
	v.reports = append([]domain.IngestionReport{r}, v.reports...)
	if len(v.reports) > maxReports {
		v.reports = v.reports[:maxReports]
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the intake view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("Intake"), ""}

	if v.Editing() {
		sections = append(sections, v.renderForm()...)
	} else {
		sections = append(sections, v.renderPending()...)
	}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.renderReports()...)
	sections = append(sections, v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderPending() []string {
	if len(v.pending) == 0 {
		return []string{v.styles.Muted.Render("No documents awaiting metadata"), ""}
	}

	lines := []string{v.styles.Subtitle.Render(fmt.Sprintf("Awaiting metadata (%d)", len(v.pending))), ""}
	for i, path := range v.pending {
		if i == v.selected {
			lines = append(lines, v.styles.Selected.Render("> "+filepath.Base(path)))
			continue
		}
		lines = append(lines, v.styles.Normal.Render("  "+filepath.Base(path)))
	}
	lines = append(lines, "", v.styles.Help.Render("[enter] Edit metadata  [r] Refresh  [esc] Back"), "")
	return lines
}

func (v *View) renderForm() []string {
	lines := []string{v.styles.Subtitle.Render(filepath.Base(v.editing)), ""}
	for _, f := range v.fields {
		lines = append(lines, f.View())
	}
	return append(lines, "")
}

func (v *View) renderReports() []string {
	if len(v.reports) == 0 {
		return nil
	}

	lines := []string{v.styles.Subtitle.Render("Recent"), ""}
	for _, r := range v.reports {
		lines = append(lines, v.renderReport(r))
	}
	return append(lines, "")
}

func (v *View) renderReport(r domain.IngestionReport) string {
	name := r.Document.Name()
	switch {
	case r.State == domain.StateArchived:
		line := fmt.Sprintf("  ok      %s  %d chunks", name, r.Stored)
		if r.Skipped > 0 {
			line += fmt.Sprintf(", %d skipped", r.Skipped)
		}
		return v.styles.Success.Render(line)
	case r.State == domain.StateFailed:
		return v.styles.Error.Render(fmt.Sprintf("  failed  %s  %v", name, r.Err))
	default:
		return v.styles.Muted.Render(fmt.Sprintf("  stopped %s", name))
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	for _, f := range v.fields {
		f.SetWidth(width)
	}
	v.statusbar.SetWidth(width)
}

// Reset closes the form and clears errors.
func (v *View) Reset() {
	v.closeForm()
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
}

// Editing reports whether the metadata form is open.
func (v *View) Editing() bool {
	return v.editing != ""
}

// EditingPath returns the path whose metadata is being edited.
func (v *View) EditingPath() string {
	return v.editing
}

// Pending returns the paths awaiting metadata.
func (v *View) Pending() []string {
	return v.pending
}

// Reports returns the recent ingestion reports, newest first.
func (v *View) Reports() []domain.IngestionReport {
	return v.reports
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}
