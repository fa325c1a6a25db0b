// Package watch drives ingestion from filesystem events on the intake directory.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// DefaultDebounce coalesces the burst of events a single copy produces.
const DefaultDebounce = 500 * time.Millisecond

// MetadataLoader reads metadata prepared next to a PDF.
// The boolean is false when none exists.
type MetadataLoader func(pdfPath string) (domain.DocumentMetadata, bool, error)

// Config configures a Watcher.
type Config struct {
	// Dir is the intake directory. It is not watched recursively.
	Dir string

	// Debounce is how long the watcher waits after the last event for a path.
	Debounce time.Duration

	// InitialScan ingests PDFs already in Dir when Run starts.
	InitialScan bool

	// SidecarSuffix marks metadata files, e.g. "scan.pdf.meta.toml".
	// Empty disables sidecar handling.
	SidecarSuffix string

	// LoadSidecar reads a sidecar for a PDF path.
	LoadSidecar MetadataLoader
}

// Watcher starts one ingestion per PDF that appears in the intake directory.
// Each ingestion parks in AwaitingMetadata until metadata arrives from a
// sidecar file or another driving adapter.
type Watcher struct {
	cfg       Config
	ingestion driving.IngestionOrchestrator
	log       *logger.Logger
	onReport  func(domain.IngestionReport)

	mu     sync.Mutex
	active map[string]struct{}
	wg     sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithReportHandler is called with the report of every finished ingestion.
func WithReportHandler(fn func(domain.IngestionReport)) Option {
	return func(w *Watcher) {
		w.onReport = fn
	}
}

// New creates a watcher over the intake directory.
func New(ingestion driving.IngestionOrchestrator, cfg Config, log *logger.Logger, opts ...Option) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if log == nil {
		log = logger.Discard()
	}
	w := &Watcher{
		cfg:       cfg,
		ingestion: ingestion,
		log:       log.With("watch"),
		active:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled, then waits for in-flight ingestions
// to observe the cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	if w.cfg.Dir == "" {
		return errors.New("watch: intake directory is required")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.cfg.Dir); err != nil {
		return err
	}
	w.log.Info("watching %s", w.cfg.Dir)

	if w.cfg.InitialScan {
		docs, err := w.ingestion.Discover(ctx)
		if err != nil {
			w.log.Warn("initial scan: %v", err)
		}
		for _, doc := range docs {
			w.start(ctx, doc.Path)
		}
	}

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.cfg.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			w.wg.Wait()
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				w.wg.Wait()
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if w.isSidecar(ev.Name) || isPDF(ev.Name) {
				pending[ev.Name] = struct{}{}
				timer.Reset(w.cfg.Debounce)
			}

		case <-timer.C:
			for path := range pending {
				delete(pending, path)
				w.handle(ctx, path)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				w.wg.Wait()
				return nil
			}
			w.log.Warn("watcher error: %v", err)
		}
	}
}

// Wait blocks until every started ingestion has returned.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) handle(ctx context.Context, path string) {
	if w.isSidecar(path) {
		pdf := strings.TrimSuffix(path, w.cfg.SidecarSuffix)
		w.submitSidecar(ctx, pdf)
		return
	}
	w.start(ctx, path)
}

// start launches ingestion for path unless one is already running.
func (w *Watcher) start(ctx context.Context, path string) {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		return
	}

	w.mu.Lock()
	if _, ok := w.active[path]; ok {
		w.mu.Unlock()
		return
	}
	w.active[path] = struct{}{}
	w.mu.Unlock()

	w.submitSidecar(ctx, path)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			delete(w.active, path)
			w.mu.Unlock()
		}()

		report := w.ingestion.Ingest(ctx, domain.NewDocument(path))
		if report.Err != nil && !errors.Is(report.Err, context.Canceled) {
			w.log.Warn("%s: %v", filepath.Base(path), report.Err)
		}
		if w.onReport != nil {
			w.onReport(report)
		}
	}()
}

// submitSidecar hands a PDF's sidecar metadata to the orchestrator, if any.
func (w *Watcher) submitSidecar(ctx context.Context, pdf string) {
	if w.cfg.LoadSidecar == nil {
		return
	}
	meta, ok, err := w.cfg.LoadSidecar(pdf)
	if err != nil {
		w.log.Warn("sidecar for %s: %v", filepath.Base(pdf), err)
		return
	}
	if !ok {
		return
	}
	if err := w.ingestion.SubmitMetadata(ctx, pdf, meta); err != nil {
		w.log.Warn("%v", err)
		return
	}
	w.log.Debug("metadata for %s read from sidecar", filepath.Base(pdf))
}

func (w *Watcher) isSidecar(path string) bool {
	return w.cfg.SidecarSuffix != "" && strings.HasSuffix(path, w.cfg.SidecarSuffix)
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
