package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/logger"
)

type fakeIngestion struct {
	mu        sync.Mutex
	docs      []domain.Document
	ingested  []string
	submitted map[string]domain.DocumentMetadata
}

func (f *fakeIngestion) Discover(_ context.Context) ([]domain.Document, error) {
	return f.docs, nil
}

func (f *fakeIngestion) Ingest(_ context.Context, doc domain.Document) domain.IngestionReport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ingested = append(f.ingested, doc.Path)
	return domain.IngestionReport{Document: doc, State: domain.StateArchived}
}

func (f *fakeIngestion) IngestAll(_ context.Context) ([]domain.IngestionReport, error) {
	return nil, nil
}

func (f *fakeIngestion) SubmitMetadata(_ context.Context, path string, meta domain.DocumentMetadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitted == nil {
		f.submitted = make(map[string]domain.DocumentMetadata)
	}
	f.submitted[path] = meta
	return nil
}

func (f *fakeIngestion) Pending() []string { return nil }

func (f *fakeIngestion) ingestedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ingested...)
}

func (f *fakeIngestion) metadataFor(path string) (domain.DocumentMetadata, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.submitted[path]
	return m, ok
}

func runWatcher(t *testing.T, w *Watcher) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	// Give fsnotify time to register the directory.
	time.Sleep(50 * time.Millisecond)
	return cancel
}

func TestWatcher_RequiresDir(t *testing.T) {
	w := New(&fakeIngestion{}, Config{}, logger.Discard())
	err := w.Run(context.Background())
	assert.Error(t, err)
}

func TestWatcher_IngestsNewPDF(t *testing.T) {
	dir := t.TempDir()
	ing := &fakeIngestion{}
	reports := make(chan domain.IngestionReport, 4)
	w := New(ing, Config{Dir: dir, Debounce: 20 * time.Millisecond}, logger.Discard(),
		WithReportHandler(func(r domain.IngestionReport) { reports <- r }))
	runWatcher(t, w)

	path := filepath.Join(dir, "scan.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0600))

	select {
	case r := <-reports:
		assert.Equal(t, path, r.Document.Path)
		assert.Equal(t, domain.StateArchived, r.State)
	case <-time.After(5 * time.Second):
		t.Fatal("no ingestion started")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	ing := &fakeIngestion{}
	w := New(ing, Config{Dir: dir, Debounce: 20 * time.Millisecond}, logger.Discard())
	runWatcher(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))
	time.Sleep(200 * time.Millisecond)

	assert.Empty(t, ing.ingestedPaths())
}

func TestWatcher_InitialScan(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "existing.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0600))

	ing := &fakeIngestion{docs: []domain.Document{domain.NewDocument(path)}}
	w := New(ing, Config{Dir: dir, InitialScan: true}, logger.Discard())
	runWatcher(t, w)

	assert.Eventually(t, func() bool {
		return len(ing.ingestedPaths()) == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{path}, ing.ingestedPaths())
}

func TestWatcher_SubmitsSidecarMetadata(t *testing.T) {
	dir := t.TempDir()
	ing := &fakeIngestion{}
	meta := domain.DocumentMetadata{Title: "Some Title", Authors: "Smith"}
	load := func(pdf string) (domain.DocumentMetadata, bool, error) {
		if _, err := os.Stat(pdf + ".meta.toml"); err != nil {
			return domain.DocumentMetadata{}, false, nil
		}
		return meta, true, nil
	}
	w := New(ing, Config{
		Dir:           dir,
		Debounce:      20 * time.Millisecond,
		SidecarSuffix: ".meta.toml",
		LoadSidecar:   load,
	}, logger.Discard())
	runWatcher(t, w)

	pdf := filepath.Join(dir, "scan.pdf")
	require.NoError(t, os.WriteFile(pdf+".meta.toml", []byte(`Title = "Some Title"`), 0600))

	assert.Eventually(t, func() bool {
		_, ok := ing.metadataFor(pdf)
		return ok
	}, 5*time.Second, 10*time.Millisecond)

	got, _ := ing.metadataFor(pdf)
	assert.Equal(t, meta, got)
	assert.Empty(t, ing.ingestedPaths(), "a sidecar alone does not start ingestion")
}

func TestWatcher_SkipsVanishedFile(t *testing.T) {
	ing := &fakeIngestion{}
	w := New(ing, Config{Dir: t.TempDir()}, logger.Discard())

	w.start(context.Background(), filepath.Join(t.TempDir(), "gone.pdf"))
	w.Wait()

	assert.Empty(t, ing.ingestedPaths())
}

func TestIsPDF(t *testing.T) {
	assert.True(t, isPDF("/a/b.pdf"))
	assert.True(t, isPDF("/a/B.PDF"))
	assert.False(t, isPDF("/a/b.pdf.meta.toml"))
	assert.False(t, isPDF("/a/b"))
}
