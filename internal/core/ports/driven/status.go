package driven

import "github.com/custodia-labs/folio/internal/core/domain"

// StatusReporter receives ingestion progress events.
// Implementations must not block for long; they are called inline.
type StatusReporter interface {
	Report(event domain.IngestionEvent)
}
