// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/folio/internal/core/domain"
)

// SearchRequested is a command to perform a search.
type SearchRequested struct {
	Query string
}

// SearchCompleted carries search results back to the model.
// Current is false when a newer query superseded this one.
type SearchCompleted struct {
	Query   string
	Results []domain.CitedResult
	Current bool
}

// ResultSelected is sent when a search result is selected.
type ResultSelected struct {
	Index int
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch is the search input and results view.
	ViewSearch
	// ViewIntake lists documents waiting for metadata.
	ViewIntake
	// ViewHelp is the help/keybindings view.
	ViewHelp
	// ViewSettings is the settings configuration view.
	ViewSettings
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewIntake:
		return "intake"
	case ViewHelp:
		return "help"
	case ViewSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// PendingLoaded carries the paths waiting for metadata.
type PendingLoaded struct {
	Paths []string
}

// PendingTick triggers a refresh of the pending list.
type PendingTick struct{}

// MetadataSubmitted signals metadata was handed to the orchestrator.
type MetadataSubmitted struct {
	Path string
	Err  error
}

// IngestionReported carries the report of a finished ingestion.
type IngestionReported struct {
	Report domain.IngestionReport
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Keys     []string
	Err      error

	// Invalid is the validation failure of the loaded settings, if any.
	Invalid error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Key string
	Err error
}
