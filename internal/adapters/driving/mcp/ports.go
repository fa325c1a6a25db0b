package mcp

import (
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Retrieval answers library queries.
	Retrieval driving.RetrievalService

	// Ingestion exposes pending intake documents. Optional: without it the
	// intake tools and resources report that ingestion is not running.
	Ingestion driving.IngestionOrchestrator
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
