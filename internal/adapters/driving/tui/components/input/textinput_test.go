package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
)

func TestNewSearchInput(t *testing.T) {
	input := NewSearchInput(styles.DefaultStyles())

	require.NotNil(t, input)
	assert.Equal(t, "", input.Value())
	assert.True(t, input.Focused())
	assert.Equal(t, "Search: ", input.Label())
}

func TestNewField_StartsBlurred(t *testing.T) {
	f := NewField(nil, "Title: ", "required", 128)

	require.NotNil(t, f)
	assert.NotNil(t, f.styles)
	assert.False(t, f.Focused())
}

func TestField_Init(t *testing.T) {
	assert.NotNil(t, NewSearchInput(nil).Init())
}

func TestField_UpdateTypes(t *testing.T) {
	input := NewSearchInput(nil)

	updated, _ := input.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})

	assert.Equal(t, input, updated)
	assert.Equal(t, "a", input.Value())
}

func TestField_BlurredIgnoresKeys(t *testing.T) {
	f := NewField(nil, "Title: ", "", 128)

	f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})

	assert.Equal(t, "", f.Value())
}

func TestField_CharLimit(t *testing.T) {
	f := NewField(nil, "Date: ", "", 4)
	f.Focus()

	for _, r := range "202412" {
		f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "2024", f.Value())
}

func TestField_View(t *testing.T) {
	view := NewSearchInput(nil).View()

	assert.Contains(t, view, "Search")
}

func TestField_SetValueAndReset(t *testing.T) {
	f := NewField(nil, "Authors: ", "", 128)

	f.SetValue("Smith, Jones")
	assert.Equal(t, "Smith, Jones", f.Value())

	f.Reset()
	assert.Equal(t, "", f.Value())
}

func TestField_FocusBlur(t *testing.T) {
	f := NewField(nil, "Title: ", "", 128)

	f.Focus()
	assert.True(t, f.Focused())

	f.Blur()
	assert.False(t, f.Focused())
}

func TestField_SetWidth(t *testing.T) {
	f := NewField(nil, "Title: ", "", 128)

	f.SetWidth(100)
	assert.Equal(t, 100, f.Width())
	assert.Equal(t, 100-len("Title: ")-6, f.textinput.Width)

	f.SetWidth(10)
	assert.Equal(t, 20, f.textinput.Width)
}
