package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// DefaultRetrievalLimit is the number of neighbours returned per query.
const DefaultRetrievalLimit = 10

// RetrievalService embeds a prompt and returns the nearest chunks with citations.
type RetrievalService struct {
	embedder   driven.EmbeddingService
	store      driven.VectorStore
	collection string
	limit      int
	log        *logger.Logger
}

// NewRetrievalService creates a new retrieval service.
// A limit below 1 uses DefaultRetrievalLimit; an empty collection uses "library".
func NewRetrievalService(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	collection string,
	limit int,
	log *logger.Logger,
) *RetrievalService {
	if collection == "" {
		collection = domain.DefaultCollection
	}
	if limit < 1 {
		limit = DefaultRetrievalLimit
	}
	if log == nil {
		log = logger.Discard()
	}
	return &RetrievalService{
		embedder:   embedder,
		store:      store,
		collection: collection,
		limit:      limit,
		log:        log.With("retrieval"),
	}
}

// Query returns up to limit results, best match first. Errors are logged
// and produce an empty slice; Query never fails.
func (s *RetrievalService) Query(ctx context.Context, prompt string) []domain.CitedResult {
	s.log.Section("Retrieval")
	s.log.Debug("Prompt: %q", prompt)

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		s.log.Debug("Empty prompt, returning no results")
		return []domain.CitedResult{}
	}
	if s.embedder == nil {
		s.log.Error("query %q: %v", prompt, domain.ErrEmbeddingUnavailable)
		return []domain.CitedResult{}
	}

	vector, err := s.embedder.Embed(ctx, prompt)
	if err != nil {
		s.log.Error("embed query %q: %v", prompt, err)
		return []domain.CitedResult{}
	}
	if len(vector) == 0 {
		s.log.Error("embed query %q: %v", prompt, domain.ErrEmptyEmbedding)
		return []domain.CitedResult{}
	}

	collection, err := s.store.Collection(ctx, s.collection)
	if err != nil {
		s.log.Error("open collection %q: %v", s.collection, err)
		return []domain.CitedResult{}
	}

	res, err := collection.Query(ctx, driven.QueryRequest{
		Embeddings: [][]float32{vector},
		K:          s.limit,
	})
	if err != nil {
		s.log.Error("query collection %q: %v", s.collection, err)
		return []domain.CitedResult{}
	}

	results := zipResults(res)
	s.log.Debug("%d results", len(results))
	return results
}

// zipResults pairs documents with metadatas positionally for the first query.
func zipResults(res driven.QueryResult) []domain.CitedResult {
	if len(res.Documents) == 0 || len(res.Metadatas) == 0 {
		return []domain.CitedResult{}
	}
	docs, metas := res.Documents[0], res.Metadatas[0]

	n := min(len(docs), len(metas))
	results := make([]domain.CitedResult, 0, n)
	for i := 0; i < n; i++ {
		rec := domain.NewResultRecord(docs[i], metas[i])
		if len(res.Distances) > 0 && i < len(res.Distances[0]) {
			rec.Distance = res.Distances[0][i]
		}
		results = append(results, domain.CitedResult{Record: rec, Citation: Cite(rec)})
	}
	return results
}
