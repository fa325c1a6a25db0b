package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

var _ driving.QuerySession = (*QuerySession)(nil)

// QuerySession tracks the newest query of one interactive session so that
// results of superseded queries can be discarded.
type QuerySession struct {
	retrieval driving.RetrievalService

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewQuerySession creates a session over the retrieval service.
func NewQuerySession(retrieval driving.RetrievalService) *QuerySession {
	return &QuerySession{retrieval: retrieval}
}

// Begin starts a new query. The previous query's context is cancelled and
// its ticket stops being current.
func (s *QuerySession) Begin(ctx context.Context) (uint64, context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.seq++
	return s.seq, ctx
}

// IsCurrent reports whether ticket belongs to the newest query.
func (s *QuerySession) IsCurrent(ticket uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ticket == s.seq
}

// Query runs prompt as the session's newest query. The boolean is false when
// another query was issued before this one completed; the results must then
// be discarded.
func (s *QuerySession) Query(ctx context.Context, prompt string) ([]domain.CitedResult, bool) {
	ticket, qctx := s.Begin(ctx)
	results := s.retrieval.Query(qctx, prompt)
	if !s.IsCurrent(ticket) {
		return nil, false
	}
	return results, true
}

// Close cancels any in-flight query.
func (s *QuerySession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
