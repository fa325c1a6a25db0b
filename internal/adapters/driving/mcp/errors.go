// Package mcp provides an MCP (Model Context Protocol) server adapter for folio.
// It lets AI assistants query the library and complete pending intake metadata.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

// ErrIngestionUnavailable is returned by intake tools when no orchestrator is wired.
var ErrIngestionUnavailable = errors.New("mcp: ingestion is not running")
