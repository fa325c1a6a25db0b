package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockArchiver implements driven.Archiver for testing.
type mockArchiver struct {
	mu         sync.Mutex
	paths      []string
	listErr    error
	archiveErr error
	archived   map[string]string
}

func (m *mockArchiver) List(_ context.Context) ([]string, error) {
	return m.paths, m.listErr
}

func (m *mockArchiver) Archive(_ context.Context, path, name string) (string, error) {
	if m.archiveErr != nil {
		return "", m.archiveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.archived == nil {
		m.archived = make(map[string]string)
	}
	dest := filepath.Join("/library/processed", name)
	m.archived[path] = dest
	return dest, nil
}

// mockTextExtractor implements driven.TextExtractor for testing.
type mockTextExtractor struct {
	probeErr   error
	extractErr error
	pages      []domain.PageText
	probes     int
}

func (m *mockTextExtractor) Probe(_ context.Context, _ string) error {
	m.probes++
	return m.probeErr
}

func (m *mockTextExtractor) ExtractPages(_ context.Context, _ string) ([]domain.PageText, error) {
	return m.pages, m.extractErr
}

// mockPageExtractor implements PageExtractor for testing.
type mockPageExtractor struct {
	pages []domain.PageText
	calls int
}

func (m *mockPageExtractor) ExtractPages(_ context.Context, _ domain.Document) []domain.PageText {
	m.calls++
	return m.pages
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Texts listed in failOn return an error; everything else embeds to vector.
type mockEmbeddingService struct {
	mu     sync.Mutex
	vector []float32
	err    error
	failOn map[string]bool
	texts  []string
	onCall func(text string)
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	onCall := m.onCall
	m.mu.Unlock()
	if onCall != nil {
		onCall(text)
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.failOn[text] {
		return nil, errors.New("embedding backend rejected input")
	}
	if m.vector == nil {
		return []float32{1, 0, 0}, nil
	}
	return m.vector, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return 3
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return m.err
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockVectorStore implements driven.VectorStore for testing.
type mockVectorStore struct {
	collection *mockCollection
	err        error
	opened     []string
}

func (m *mockVectorStore) Collection(_ context.Context, name string) (driven.Collection, error) {
	m.opened = append(m.opened, name)
	if m.err != nil {
		return nil, m.err
	}
	if m.collection == nil {
		m.collection = &mockCollection{name: name}
	}
	return m.collection, nil
}

func (m *mockVectorStore) Close() error {
	return nil
}

// mockCollection implements driven.Collection for testing.
type mockCollection struct {
	mu        sync.Mutex
	name      string
	entries   []domain.CorpusEntry
	upsertErr error
	result    driven.QueryResult
	queryErr  error
	requests  []driven.QueryRequest
}

func (m *mockCollection) Name() string {
	return m.name
}

func (m *mockCollection) Upsert(_ context.Context, entry domain.CorpusEntry) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockCollection) Query(_ context.Context, req driven.QueryRequest) (driven.QueryResult, error) {
	m.requests = append(m.requests, req)
	return m.result, m.queryErr
}

func (m *mockCollection) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), nil
}

// recordingReporter implements driven.StatusReporter for testing.
type recordingReporter struct {
	mu     sync.Mutex
	events []domain.IngestionEvent
	notify chan domain.IngestionEvent
}

func (r *recordingReporter) Report(event domain.IngestionEvent) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	if r.notify != nil {
		r.notify <- event
	}
}

func (r *recordingReporter) states() []domain.IngestionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	var states []domain.IngestionState
	for _, e := range r.events {
		if len(states) == 0 || states[len(states)-1] != e.State {
			states = append(states, e.State)
		}
	}
	return states
}

func (r *recordingReporter) failures() []domain.IngestionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.IngestionEvent
	for _, e := range r.events {
		if e.Err != nil {
			out = append(out, e)
		}
	}
	return out
}

// mockRasterizer implements driven.Rasterizer for testing.
type mockRasterizer struct {
	pages int
	err   error
	dirs  []string
}

func (m *mockRasterizer) Rasterize(_ context.Context, _, dir string) ([]string, error) {
	m.dirs = append(m.dirs, dir)
	if m.err != nil {
		return nil, m.err
	}
	paths := make([]string, m.pages)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("page-%d.png", i+1))
		if err := writeBlankPNG(paths[i]); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// mockSegmenter implements driven.RegionSegmenter for testing.
type mockSegmenter struct {
	regions []domain.PageRegion
}

func (m *mockSegmenter) Segment(_ image.Image) []domain.PageRegion {
	out := make([]domain.PageRegion, len(m.regions))
	copy(out, m.regions)
	return out
}

// mockOCR implements driven.OCREngine for testing.
// Text is looked up by region Y coordinate.
type mockOCR struct {
	mu    sync.Mutex
	byY   map[int]string
	calls int
}

func (m *mockOCR) Read(_ context.Context, _ image.Image, region domain.PageRegion) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.byY[region.Y]
}

// mockSplitter implements driven.TextSplitter for testing: splits on "|".
type mockSplitter struct{}

func (mockSplitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "|")
}
