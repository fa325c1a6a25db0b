package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure IngestionOrchestrator implements the interface.
var _ driving.IngestionOrchestrator = (*IngestionOrchestrator)(nil)

// PageExtractor recovers page text when the PDF has no usable text layer.
type PageExtractor interface {
	ExtractPages(ctx context.Context, doc domain.Document) []domain.PageText
}

// IngestionOrchestrator moves documents through
// Discovered -> AwaitingMetadata -> Extracting -> Embedding -> Archived | Failed.
type IngestionOrchestrator struct {
	archiver     driven.Archiver
	classifier   *DocumentClassifier
	structured   driven.TextExtractor
	unstructured PageExtractor
	assembler    *ChunkAssembler
	embedder     driven.EmbeddingService
	store        driven.VectorStore
	reporter     driven.StatusReporter
	log          *logger.Logger

	collection  string
	deduplicate bool
	now         func() time.Time

	mu      sync.Mutex
	waiting map[string]chan domain.DocumentMetadata
	held    map[string]domain.DocumentMetadata
	active  map[string]bool
}

// IngestionOption configures an IngestionOrchestrator.
type IngestionOption func(*IngestionOrchestrator)

// WithCollection sets the target collection. Defaults to "library".
func WithCollection(name string) IngestionOption {
	return func(o *IngestionOrchestrator) {
		if name != "" {
			o.collection = name
		}
	}
}

// WithDeduplication derives chunk ids from content so re-ingesting a
// document replaces its entries instead of adding new ones.
func WithDeduplication(enabled bool) IngestionOption {
	return func(o *IngestionOrchestrator) {
		o.deduplicate = enabled
	}
}

// WithReporter sets where state transitions are published.
func WithReporter(r driven.StatusReporter) IngestionOption {
	return func(o *IngestionOrchestrator) {
		o.reporter = r
	}
}

// NewIngestionOrchestrator creates a new ingestion orchestrator.
func NewIngestionOrchestrator(
	archiver driven.Archiver,
	structured driven.TextExtractor,
	unstructured PageExtractor,
	assembler *ChunkAssembler,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	log *logger.Logger,
	opts ...IngestionOption,
) *IngestionOrchestrator {
	if log == nil {
		log = logger.Discard()
	}
	if assembler == nil {
		assembler = NewChunkAssembler(nil)
	}

	o := &IngestionOrchestrator{
		archiver:     archiver,
		classifier:   NewDocumentClassifier(structured, log),
		structured:   structured,
		unstructured: unstructured,
		assembler:    assembler,
		embedder:     embedder,
		store:        store,
		log:          log.With("ingest"),
		collection:   domain.DefaultCollection,
		now:          time.Now,
		waiting:      make(map[string]chan domain.DocumentMetadata),
		held:         make(map[string]domain.DocumentMetadata),
		active:       make(map[string]bool),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Discover lists the documents waiting in the intake directory.
func (o *IngestionOrchestrator) Discover(ctx context.Context) ([]domain.Document, error) {
	paths, err := o.archiver.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list intake: %w", err)
	}

	docs := make([]domain.Document, len(paths))
	for i, path := range paths {
		docs[i] = domain.NewDocument(path)
	}
	return docs, nil
}

// IngestAll discovers and ingests every document sequentially.
// It stops early when ctx is cancelled.
func (o *IngestionOrchestrator) IngestAll(ctx context.Context) ([]domain.IngestionReport, error) {
	docs, err := o.Discover(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]domain.IngestionReport, 0, len(docs))
	for _, doc := range docs {
		reports = append(reports, o.Ingest(ctx, doc))
		if ctx.Err() != nil {
			return reports, ctx.Err()
		}
	}
	return reports, nil
}

// Ingest runs one document to a terminal state.
//
// Cancelling ctx before the Embedding state leaves no trace: nothing is
// stored, the file stays in intake and the report's state is Discovered.
// Cancelling during Embedding keeps the chunks already stored but does not
// archive the file.
func (o *IngestionOrchestrator) Ingest(ctx context.Context, doc domain.Document) domain.IngestionReport {
	doc.Path = filepath.Clean(doc.Path)
	report := domain.IngestionReport{Document: doc}

	if !o.acquire(doc.Path) {
		report.State = doc.State
		report.Err = fmt.Errorf("%s: %w", doc.Name(), domain.ErrIngestionInProgress)
		return report
	}
	defer o.release(doc.Path)

	o.emit(&doc, domain.StateDiscovered, "found in intake", nil)

	// AwaitingMetadata
	meta, err := o.awaitMetadata(ctx, &doc)
	if err != nil {
		o.emit(&doc, domain.StateDiscovered, "metadata wait cancelled", err)
		return o.finish(report, doc, err)
	}
	doc.Metadata = meta

	// Extracting
	o.emit(&doc, domain.StateExtracting, "extracting text", nil)
	pages := o.extract(ctx, &doc)
	if err := ctx.Err(); err != nil {
		o.emit(&doc, domain.StateDiscovered, "extraction cancelled", err)
		return o.finish(report, doc, err)
	}
	chunks := o.assembler.Assemble(pages)
	report.Pages = len(pages)
	report.Chunks = len(chunks)
	o.emit(&doc, domain.StateExtracting,
		fmt.Sprintf("%d pages, %d chunks (%s)", len(pages), len(chunks), doc.Readability), nil)

	// Embedding
	o.emit(&doc, domain.StateEmbedding, fmt.Sprintf("embedding %d chunks", len(chunks)), nil)
	report.Stored, report.Skipped = o.embedChunks(ctx, &doc, chunks)
	if err := ctx.Err(); err != nil {
		o.emit(&doc, domain.StateDiscovered, "embedding cancelled", err)
		return o.finish(report, doc, err)
	}

	// Archived | Failed
	dest, err := o.archiver.Archive(ctx, doc.Path, doc.Metadata.ArchiveName())
	if err != nil {
		err = fmt.Errorf("archive %s: %w", doc.Name(), err)
		o.emit(&doc, domain.StateFailed, "left in intake", err)
		report.State = domain.StateFailed
		report.Document = doc
		report.Err = err
		return report
	}

	report.ArchivePath = dest
	o.emit(&doc, domain.StateArchived,
		fmt.Sprintf("%d/%d chunks stored, moved to %s", report.Stored, report.Chunks, dest), nil)
	doc.ResetMetadata()
	report.State = domain.StateArchived
	report.Document = doc
	return report
}

// SubmitMetadata hands metadata to a parked ingestion, or holds it for the
// next ingestion of the same path.
func (o *IngestionOrchestrator) SubmitMetadata(_ context.Context, path string, meta domain.DocumentMetadata) error {
	if err := meta.Validate(); err != nil {
		return fmt.Errorf("submit metadata for %s: title is required: %w", filepath.Base(path), err)
	}
	path = filepath.Clean(path)

	o.mu.Lock()
	defer o.mu.Unlock()

	if ch, ok := o.waiting[path]; ok {
		delete(o.waiting, path)
		ch <- meta // buffered, never blocks
		return nil
	}
	o.held[path] = meta
	return nil
}

// Pending returns the paths currently waiting for metadata, sorted.
func (o *IngestionOrchestrator) Pending() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	paths := make([]string, 0, len(o.waiting))
	for path := range o.waiting {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// awaitMetadata parks until metadata is submitted for the document.
func (o *IngestionOrchestrator) awaitMetadata(ctx context.Context, doc *domain.Document) (domain.DocumentMetadata, error) {
	if strings.TrimSpace(doc.Metadata.Title) != "" {
		return doc.Metadata, nil
	}

	o.mu.Lock()
	if meta, ok := o.held[doc.Path]; ok {
		delete(o.held, doc.Path)
		o.mu.Unlock()
		return meta, nil
	}
	ch := make(chan domain.DocumentMetadata, 1)
	o.waiting[doc.Path] = ch
	o.mu.Unlock()

	o.emit(doc, domain.StateAwaitingMetadata, "waiting for title, authors, publisher, date", nil)

	select {
	case meta := <-ch:
		return meta, nil
	case <-ctx.Done():
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.waiting[doc.Path] == ch {
			delete(o.waiting, doc.Path)
		}
		// Metadata submitted concurrently with cancellation is kept for the next run.
		select {
		case meta := <-ch:
			o.held[doc.Path] = meta
		default:
		}
		return domain.DocumentMetadata{}, ctx.Err()
	}
}

// extract classifies the document and runs the matching extraction path.
func (o *IngestionOrchestrator) extract(ctx context.Context, doc *domain.Document) []domain.PageText {
	if o.classifier.Classify(ctx, doc) == domain.ReadabilityStructured {
		pages, err := o.structured.ExtractPages(ctx, doc.Path)
		if err == nil {
			return pages
		}
		o.log.Warn("structured extraction of %s failed, falling back to OCR: %v", doc.Name(), err)
		doc.Readability = domain.ReadabilityUnstructured
	}

	if o.unstructured == nil {
		o.log.Error("%s needs OCR but no OCR path is configured", doc.Name())
		return nil
	}
	return o.unstructured.ExtractPages(ctx, *doc)
}

// embedChunks embeds and upserts every chunk. Failures are reported and
// skipped so later chunks are still stored.
func (o *IngestionOrchestrator) embedChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) (stored, skipped int) {
	if len(chunks) == 0 {
		return 0, 0
	}

	collection, err := o.store.Collection(ctx, o.collection)
	if err != nil {
		o.emit(doc, domain.StateEmbedding, "collection unavailable, all chunks skipped",
			fmt.Errorf("open collection %q: %w", o.collection, err))
		return 0, len(chunks)
	}

	for i := range chunks {
		if ctx.Err() != nil {
			return stored, skipped
		}
		if err := o.storeChunk(ctx, collection, doc, &chunks[i]); err != nil {
			skipped++
			o.emit(doc, domain.StateEmbedding,
				fmt.Sprintf("chunk %d (page %d) skipped", i+1, chunks[i].PageNumber), err)
			continue
		}
		stored++
	}
	return stored, skipped
}

func (o *IngestionOrchestrator) storeChunk(
	ctx context.Context, collection driven.Collection, doc *domain.Document, chunk *domain.Chunk,
) error {
	if o.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}
	vector, err := o.embedder.Embed(ctx, chunk.Contents)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(vector) == 0 {
		return domain.ErrEmptyEmbedding
	}

	chunk.ID = o.chunkID(doc.Metadata, chunk)
	entry := domain.CorpusEntry{
		ID:        chunk.ID,
		Embedding: vector,
		Contents:  chunk.Contents,
		Metadata:  domain.NewEntryMetadata(chunk.ID, doc.Metadata, chunk.PageNumber),
	}
	if err := collection.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

// chunkID returns a random id, or a content-derived one when deduplicating.
func (o *IngestionOrchestrator) chunkID(meta domain.DocumentMetadata, chunk *domain.Chunk) string {
	if !o.deduplicate {
		return uuid.NewString()
	}
	key := strings.Join([]string{
		o.collection, meta.Title, meta.Authors, meta.DatePublished,
		fmt.Sprint(chunk.PageNumber), chunk.Contents,
	}, "\x00")
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

func (o *IngestionOrchestrator) emit(doc *domain.Document, state domain.IngestionState, msg string, err error) {
	doc.State = state
	if o.reporter == nil {
		return
	}
	o.reporter.Report(domain.IngestionEvent{
		Path:    doc.Path,
		State:   state,
		Message: msg,
		Err:     err,
		Time:    o.now(),
	})
}

// finish builds the report for a run that ends without reaching a terminal state.
func (o *IngestionOrchestrator) finish(report domain.IngestionReport, doc domain.Document, err error) domain.IngestionReport {
	doc.State = domain.StateDiscovered
	report.Document = doc
	report.State = domain.StateDiscovered
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		o.log.Info("%s: ingestion cancelled", doc.Name())
	}
	report.Err = err
	return report
}

func (o *IngestionOrchestrator) acquire(path string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active[path] {
		return false
	}
	o.active[path] = true
	return true
}

func (o *IngestionOrchestrator) release(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.active, path)
}
