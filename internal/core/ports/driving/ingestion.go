package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// IngestionOrchestrator drives documents from the intake directory into the corpus.
type IngestionOrchestrator interface {
	// Discover lists the documents waiting in the intake directory.
	Discover(ctx context.Context) ([]domain.Document, error)

	// Ingest runs one document through the state machine to a terminal state.
	// It parks in AwaitingMetadata until SubmitMetadata is called for the
	// document's path or ctx is cancelled.
	Ingest(ctx context.Context, doc domain.Document) domain.IngestionReport

	// IngestAll discovers and ingests every document sequentially.
	IngestAll(ctx context.Context) ([]domain.IngestionReport, error)

	// SubmitMetadata supplies the bibliographic fields for a document in one call.
	SubmitMetadata(ctx context.Context, path string, meta domain.DocumentMetadata) error

	// Pending returns the paths currently waiting for metadata.
	Pending() []string
}
