// Package memory provides an in-memory vector store. Entries are lost when
// the process exits; it backs tests and `store.backend = "memory"`.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/folio/internal/adapters/driven/storage/scan"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
type VectorStore struct {
	mu          sync.Mutex
	collections map[string]*Collection
	closed      bool
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{collections: make(map[string]*Collection)}
}

// Collection returns the named collection, creating it if absent.
func (s *VectorStore) Collection(_ context.Context, name string) (driven.Collection, error) {
	if err := scan.ValidateName(name); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, domain.ErrStoreClosed
	}

	c, ok := s.collections[name]
	if !ok {
		c = &Collection{name: name, index: make(map[string]int)}
		s.collections[name] = c
	}
	return c, nil
}

// Close drops every collection.
func (s *VectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.collections = nil
	return nil
}

// Ensure Collection implements the interface.
var _ driven.Collection = (*Collection)(nil)

// Collection is an in-memory collection. Entries keep insertion order.
type Collection struct {
	name string

	mu        sync.RWMutex
	entries   []domain.CorpusEntry
	index     map[string]int
	dimension int
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Upsert inserts the entry or replaces the entry with the same ID.
func (c *Collection) Upsert(_ context.Context, entry domain.CorpusEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("%w: entry id is empty", domain.ErrInvalidInput)
	}
	if len(entry.Embedding) == 0 {
		return domain.ErrEmptyEmbedding
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dimension == 0 {
		c.dimension = len(entry.Embedding)
	} else if len(entry.Embedding) != c.dimension {
		return fmt.Errorf("%w: collection %q holds %d dimensions, got %d",
			domain.ErrDimensionMismatch, c.name, c.dimension, len(entry.Embedding))
	}

	entry.Embedding = append([]float32(nil), entry.Embedding...)
	if i, ok := c.index[entry.ID]; ok {
		c.entries[i] = entry
		return nil
	}
	c.index[entry.ID] = len(c.entries)
	c.entries = append(c.entries, entry)
	return nil
}

// Query returns the K nearest entries for each query embedding.
func (c *Collection) Query(ctx context.Context, req driven.QueryRequest) (driven.QueryResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return scan.Query(req, func(add func(domain.CorpusEntry) error) error {
		for _, e := range c.entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := add(e); err != nil {
				return err
			}
		}
		return nil
	})
}

// Count returns the number of entries.
func (c *Collection) Count(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), nil
}
