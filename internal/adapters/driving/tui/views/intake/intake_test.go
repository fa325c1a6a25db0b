package intake

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/core/domain"
)

// MockIngestion implements driving.IngestionOrchestrator for testing.
type MockIngestion struct {
	mu        sync.Mutex
	pending   []string
	submitted map[string]domain.DocumentMetadata
	submitErr error
}

func (m *MockIngestion) Discover(_ context.Context) ([]domain.Document, error) {
	return nil, nil
}

func (m *MockIngestion) Ingest(_ context.Context, doc domain.Document) domain.IngestionReport {
	return domain.IngestionReport{Document: doc, State: domain.StateArchived}
}

func (m *MockIngestion) IngestAll(_ context.Context) ([]domain.IngestionReport, error) {
	return nil, nil
}

func (m *MockIngestion) SubmitMetadata(_ context.Context, path string, meta domain.DocumentMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitErr != nil {
		return m.submitErr
	}
	if m.submitted == nil {
		m.submitted = make(map[string]domain.DocumentMetadata)
	}
	m.submitted[path] = meta
	return nil
}

func (m *MockIngestion) Pending() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

func typeText(v *View, text string) {
	for _, r := range text {
		v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func loadedView(t *testing.T, ing *MockIngestion) *View {
	t.Helper()
	v := NewView(nil, nil, ing)
	v.SetDimensions(100, 40)
	msg := v.Init()()
	v.Update(msg)
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil)

	require.NotNil(t, v)
	assert.False(t, v.Editing())
	assert.Empty(t, v.Pending())
	assert.Equal(t, "Initialising...", v.View())
}

func TestLoadPending_NilIngestion(t *testing.T) {
	msg := LoadPending(nil)()
	assert.Equal(t, messages.PendingLoaded{}, msg)
}

func TestView_ListsPending(t *testing.T) {
	ing := &MockIngestion{pending: []string{"/intake/a.pdf", "/intake/b.pdf"}}
	v := loadedView(t, ing)

	assert.Equal(t, ing.pending, v.Pending())
	out := v.View()
	assert.Contains(t, out, "Awaiting metadata (2)")
	assert.Contains(t, out, "a.pdf")
	assert.Contains(t, out, "b.pdf")
}

func TestView_EmptyPending(t *testing.T) {
	v := loadedView(t, &MockIngestion{})

	assert.Contains(t, v.View(), "No documents awaiting metadata")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, v.Editing())
}

func TestView_SelectionClampedWhenListShrinks(t *testing.T) {
	ing := &MockIngestion{pending: []string{"/intake/a.pdf", "/intake/b.pdf"}}
	v := loadedView(t, ing)
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, v.selected)

	v.Update(messages.PendingLoaded{Paths: []string{"/intake/a.pdf"}})
	assert.Equal(t, 0, v.selected)
}

func TestView_SubmitMetadata(t *testing.T) {
	ing := &MockIngestion{pending: []string{"/intake/a.pdf", "/intake/b.pdf"}}
	v := loadedView(t, ing)

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, v.Editing())
	assert.Equal(t, "/intake/b.pdf", v.EditingPath())
	assert.Equal(t, status.StateEditing, v.statusbar.State())

	typeText(v, "Optics")
	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeText(v, "Jones, Lee")
	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeText(v, "Acme")
	v.Update(tea.KeyMsg{Type: tea.KeyEnter}) // moves to the date field
	typeText(v, "2019")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg := cmd()
	submitted, ok := msg.(messages.MetadataSubmitted)
	require.True(t, ok)
	assert.Equal(t, "/intake/b.pdf", submitted.Path)
	require.NoError(t, submitted.Err)
	assert.Equal(t, domain.DocumentMetadata{
		Title:         "Optics",
		Authors:       "Jones, Lee",
		Publisher:     "Acme",
		DatePublished: "2019",
	}, ing.submitted["/intake/b.pdf"])

	_, cmd = v.Update(submitted)
	assert.False(t, v.Editing())
	assert.Contains(t, v.statusbar.Message(), "b.pdf")
	require.NotNil(t, cmd)
	_, ok = cmd().(messages.PendingLoaded)
	assert.True(t, ok)
}

func TestView_SubmitShortcut(t *testing.T) {
	ing := &MockIngestion{pending: []string{"/intake/a.pdf"}}
	v := loadedView(t, ing)
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typeText(v, "Thermo")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, "Thermo", ing.submitted["/intake/a.pdf"].Title)
}

func TestView_TitleRequired(t *testing.T) {
	ing := &MockIngestion{pending: []string{"/intake/a.pdf"}}
	v := loadedView(t, ing)
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typeText(v, "   ")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Nil(t, cmd)
	assert.ErrorIs(t, v.Err(), domain.ErrInvalidInput)
	assert.True(t, v.Editing())
	assert.Empty(t, ing.submitted)
}

func TestView_SubmitErrorKeepsForm(t *testing.T) {
	ing := &MockIngestion{pending: []string{"/intake/a.pdf"}, submitErr: errors.New("boom")}
	v := loadedView(t, ing)
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typeText(v, "Thermo")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	v.Update(cmd())

	assert.True(t, v.Editing())
	assert.EqualError(t, v.Err(), "boom")
	assert.Equal(t, status.StateError, v.statusbar.State())
}

func TestView_FieldNavigationWraps(t *testing.T) {
	v := loadedView(t, &MockIngestion{pending: []string{"/intake/a.pdf"}})
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	v.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, fieldDate, v.focus)
	assert.True(t, v.fields[fieldDate].Focused())
	assert.False(t, v.fields[fieldTitle].Focused())

	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldTitle, v.focus)
}

func TestView_EscCancelsFormThenLeaves(t *testing.T) {
	v := loadedView(t, &MockIngestion{pending: []string{"/intake/a.pdf"}})
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, v.Editing())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.False(t, v.Editing())

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_ReportsLog(t *testing.T) {
	v := loadedView(t, &MockIngestion{})

	for i := 0; i < maxReports+2; i++ {
		v.Update(messages.IngestionReported{Report: domain.IngestionReport{
			Document: domain.NewDocument("/intake/old.pdf"),
			State:    domain.StateArchived,
		}})
	}
	_, cmd := v.Update(messages.IngestionReported{Report: domain.IngestionReport{
		Document: domain.NewDocument("/intake/broken.pdf"),
		State:    domain.StateFailed,
		Err:      errors.New("no text"),
	}})

	require.NotNil(t, cmd)
	assert.Len(t, v.Reports(), maxReports)
	assert.Equal(t, "/intake/broken.pdf", v.Reports()[0].Document.Path)
	out := v.View()
	assert.Contains(t, out, "Recent")
	assert.Contains(t, out, "failed  broken.pdf  no text")
}

func TestView_SubmitWithoutIngestion(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.SetDimensions(80, 24)
	v.openForm("/intake/a.pdf")
	v.fields[fieldTitle].SetValue("T")

	msg := v.submit()()

	submitted, ok := msg.(messages.MetadataSubmitted)
	require.True(t, ok)
	assert.ErrorIs(t, submitted.Err, ErrNoIngestion)
}

func TestView_Reset(t *testing.T) {
	v := loadedView(t, &MockIngestion{pending: []string{"/intake/a.pdf"}})
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	v.Reset()

	assert.False(t, v.Editing())
	assert.NoError(t, v.Err())
	assert.Equal(t, status.StateReady, v.statusbar.State())
}
