package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// RetrievalService answers free-text queries against the corpus.
type RetrievalService interface {
	// Query returns the nearest chunks with their citations, best match first.
	// It never fails: errors are logged and yield an empty result.
	Query(ctx context.Context, prompt string) []domain.CitedResult
}

// QuerySession runs the queries of one interactive session. A query that is
// superseded by a newer one before it completes reports current == false and
// its results must be discarded.
type QuerySession interface {
	Query(ctx context.Context, prompt string) (results []domain.CitedResult, current bool)

	// Close cancels any in-flight query.
	Close()
}
