package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/folio/internal/adapters/driven/ai"
	"github.com/custodia-labs/folio/internal/adapters/driven/archive"
	"github.com/custodia-labs/folio/internal/adapters/driven/command"
	"github.com/custodia-labs/folio/internal/adapters/driven/ocr/tesseract"
	"github.com/custodia-labs/folio/internal/adapters/driven/pdftext"
	"github.com/custodia-labs/folio/internal/adapters/driven/raster"
	"github.com/custodia-labs/folio/internal/adapters/driven/storage/badger"
	"github.com/custodia-labs/folio/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/folio/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/folio/internal/adapters/driven/vision"
	"github.com/custodia-labs/folio/internal/adapters/driving/cli"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/services"
	"github.com/custodia-labs/folio/internal/logger"
	"github.com/custodia-labs/folio/internal/postprocessors"
)

// newRuntime wires the ingestion and retrieval pipeline from settings.
func newRuntime(_ context.Context, settings domain.AppSettings) (*cli.Runtime, error) {
	log := logger.Default()
	lib := settings.Library

	for _, dir := range lib.Dirs() {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating library directory: %w", err)
		}
	}

	store, err := openStore(settings.Store.Backend, lib.StoreDir(), log)
	if err != nil {
		return nil, err
	}

	embedder, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}

	splitter, err := postprocessors.SplitterFromSettings(settings.Splitter)
	if err != nil {
		return nil, errors.Join(err, embedder.Close(), store.Close())
	}

	runner := command.NewExecRunner(log)
	ext := settings.Extraction
	unstructured, err := services.NewUnstructuredExtractor(
		raster.New(runner, ext.Pdftoppm, ext.DPI, log),
		vision.New(ext.PageWidth),
		tesseract.New(runner, ext.Tesseract, log, tesseract.WithTempDir(lib.ScratchDir())),
		log,
		services.WithReadingOrder(ext.ReadingOrder),
		services.WithScratchDir(lib.ScratchDir()),
		services.WithKeepImages(ext.KeepImages),
		services.WithOCRWorkers(ext.OCRWorkers),
	)
	if err != nil {
		return nil, errors.Join(err, embedder.Close(), store.Close())
	}

	ingestion := services.NewIngestionOrchestrator(
		archive.New(lib.IntakeDir(), lib.ArchiveDir(), log),
		pdftext.New(log),
		unstructured,
		services.NewChunkAssembler(splitter),
		embedder,
		store,
		log,
		services.WithCollection(lib.Collection),
		services.WithDeduplication(settings.Ingestion.Deduplicate),
		services.WithReporter(log),
	)

	retrieval := services.NewRetrievalService(embedder, store, lib.Collection, settings.Retrieval.Limit, log)

	return &cli.Runtime{
		Settings:  settings,
		Ingestion: ingestion,
		Retrieval: retrieval,
		Session:   services.NewQuerySession(retrieval),
		Close: func() error {
			unstructured.Release()
			return errors.Join(embedder.Close(), store.Close())
		},
	}, nil
}

// openStore opens the configured vector store backend.
func openStore(backend domain.StoreBackend, dir string, log *logger.Logger) (driven.VectorStore, error) {
	switch backend {
	case domain.StoreSQLite, "":
		return sqlite.NewStore(dir)
	case domain.StoreBadger:
		return badger.Open(dir, log)
	case domain.StoreMemory:
		return memory.NewVectorStore(), nil
	default:
		return nil, fmt.Errorf("%w: store backend %q", domain.ErrUnsupportedType, backend)
	}
}
