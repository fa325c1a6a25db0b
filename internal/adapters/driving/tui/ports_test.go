package tui

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// MockQuerySession implements driving.QuerySession for testing.
type MockQuerySession struct {
	QueryFunc func(ctx context.Context, prompt string) ([]domain.CitedResult, bool)
	closed    bool
}

func (m *MockQuerySession) Query(ctx context.Context, prompt string) ([]domain.CitedResult, bool) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, prompt)
	}
	return nil, true
}

func (m *MockQuerySession) Close() {
	m.closed = true
}

// MockIngestion implements driving.IngestionOrchestrator for testing.
type MockIngestion struct {
	mu        sync.Mutex
	PendingFn func() []string
	Submitted map[string]domain.DocumentMetadata
	SubmitErr error
}

func (m *MockIngestion) Discover(_ context.Context) ([]domain.Document, error) { return nil, nil }

func (m *MockIngestion) Ingest(_ context.Context, doc domain.Document) domain.IngestionReport {
	return domain.IngestionReport{Document: doc}
}

func (m *MockIngestion) IngestAll(_ context.Context) ([]domain.IngestionReport, error) {
	return nil, nil
}

func (m *MockIngestion) SubmitMetadata(_ context.Context, path string, meta domain.DocumentMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SubmitErr != nil {
		return m.SubmitErr
	}
	if m.Submitted == nil {
		m.Submitted = make(map[string]domain.DocumentMetadata)
	}
	m.Submitted[path] = meta
	return nil
}

func (m *MockIngestion) Pending() []string {
	if m.PendingFn != nil {
		return m.PendingFn()
	}
	return nil
}

func TestNewPorts(t *testing.T) {
	session := &MockQuerySession{}
	ingestion := &MockIngestion{}

	ports := NewPorts(session, ingestion, nil)

	assert.Equal(t, session, ports.Session)
	assert.Equal(t, ingestion, ports.Ingestion)
	assert.Nil(t, ports.Settings)
}

func TestPorts_Validate(t *testing.T) {
	t.Run("missing session", func(t *testing.T) {
		ports := &Ports{Ingestion: &MockIngestion{}}
		assert.ErrorIs(t, ports.Validate(), ErrMissingQuerySession)
	})

	t.Run("session only is valid", func(t *testing.T) {
		ports := &Ports{Session: &MockQuerySession{}}
		assert.NoError(t, ports.Validate())
	})
}
