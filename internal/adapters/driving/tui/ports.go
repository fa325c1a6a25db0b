// Package tui provides an interactive terminal user interface for folio.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Session runs search queries and discards superseded results.
	Session driving.QuerySession

	// Ingestion exposes documents waiting for metadata. Optional.
	Ingestion driving.IngestionOrchestrator

	// Settings manages application settings. Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	session driving.QuerySession,
	ingestion driving.IngestionOrchestrator,
	settings driving.SettingsService,
) *Ports {
	return &Ports{
		Session:   session,
		Ingestion: ingestion,
		Settings:  settings,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Session == nil {
		return ErrMissingQuerySession
	}
	return nil
}
