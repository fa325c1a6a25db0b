package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// VectorStore persists corpus entries in named collections on local disk.
type VectorStore interface {
	// Collection returns the named collection, creating it if absent.
	Collection(ctx context.Context, name string) (Collection, error)

	// Close releases resources.
	Close() error
}

// Collection is a named partition of the vector store.
// Implementations must be safe for concurrent use.
type Collection interface {
	// Name returns the collection name.
	Name() string

	// Upsert inserts the entry or replaces the entry with the same ID.
	Upsert(ctx context.Context, entry domain.CorpusEntry) error

	// Query returns the K nearest entries for each query embedding,
	// best match first.
	Query(ctx context.Context, req QueryRequest) (QueryResult, error)

	// Count returns the number of entries in the collection.
	Count(ctx context.Context) (int, error)
}

// QueryRequest asks for nearest neighbours of one or more vectors.
type QueryRequest struct {
	Embeddings [][]float32
	K          int
}

// QueryResult holds one inner slice per submitted query embedding.
// Documents[i][j] and Metadatas[i][j] describe the same entry.
type QueryResult struct {
	IDs       [][]string
	Documents [][]string
	Metadatas [][]map[string]string

	// Distances are cosine distances (1 - cosine similarity).
	Distances [][]float64
}
