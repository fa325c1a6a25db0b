package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewMenu, "menu"},
		{ViewSearch, "search"},
		{ViewIntake, "intake"},
		{ViewHelp, "help"},
		{ViewSettings, "settings"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestViewType_Distinct(t *testing.T) {
	seen := map[ViewType]bool{}
	for _, v := range []ViewType{ViewMenu, ViewSearch, ViewIntake, ViewHelp, ViewSettings} {
		assert.False(t, seen[v], "duplicate view %s", v)
		seen[v] = true
	}
}

func TestSearchCompleted_StaleCarriesNoResults(t *testing.T) {
	msg := SearchCompleted{Query: "old", Current: false}
	assert.False(t, msg.Current)
	assert.Empty(t, msg.Results)
}
