package domain

import "time"

// IngestionState is a step of the per-document ingestion state machine.
type IngestionState string

// Ingestion states.
const (
	StateDiscovered       IngestionState = "discovered"
	StateAwaitingMetadata IngestionState = "awaiting_metadata"
	StateExtracting       IngestionState = "extracting"
	StateEmbedding        IngestionState = "embedding"
	StateArchived         IngestionState = "archived"
	StateFailed           IngestionState = "failed"
)

// String returns the string representation.
func (s IngestionState) String() string {
	return string(s)
}

// IsTerminal reports whether ingestion has finished for the document.
func (s IngestionState) IsTerminal() bool {
	return s == StateArchived || s == StateFailed
}

// IngestionEvent reports progress for one document.
type IngestionEvent struct {
	// Path identifies the document.
	Path string

	// State is the state the document is in when the event is emitted.
	State IngestionState

	// Message is a short human-readable status line.
	Message string

	// Err is set for failures, including skipped chunks.
	Err error

	// Time is when the event was emitted.
	Time time.Time
}

// IngestionReport summarises one ingestion run of a document.
type IngestionReport struct {
	Document Document

	// State is the final state reached. Cancelled runs report StateDiscovered.
	State IngestionState

	// Pages is the number of pages extracted.
	Pages int

	// Chunks is the number of chunks assembled.
	Chunks int

	// Stored is the number of chunks embedded and upserted.
	Stored int

	// Skipped is the number of chunks dropped after an embedding or store failure.
	Skipped int

	// ArchivePath is where the file was moved, when archived.
	ArchivePath string

	// Err is the error that stopped the run, if any.
	Err error
}
