package mcp

import (
	"context"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.CitedResult
	prompts []string
}

func (m *mockRetrievalService) Query(_ context.Context, prompt string) []domain.CitedResult {
	m.prompts = append(m.prompts, prompt)
	return m.results
}

// mockIngestion is a mock implementation of driving.IngestionOrchestrator.
type mockIngestion struct {
	mu        sync.Mutex
	docs      []domain.Document
	pending   []string
	submitted map[string]domain.DocumentMetadata
	err       error
}

func (m *mockIngestion) Discover(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockIngestion) Ingest(_ context.Context, doc domain.Document) domain.IngestionReport {
	return domain.IngestionReport{Document: doc, State: domain.StateArchived}
}

func (m *mockIngestion) IngestAll(_ context.Context) ([]domain.IngestionReport, error) {
	return nil, m.err
}

func (m *mockIngestion) SubmitMetadata(_ context.Context, path string, meta domain.DocumentMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.submitted == nil {
		m.submitted = make(map[string]domain.DocumentMetadata)
	}
	m.submitted[path] = meta
	return nil
}

func (m *mockIngestion) Pending() []string {
	return m.pending
}
