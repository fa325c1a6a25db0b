// Package cli provides the folio command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// version is overridden at build time via SetVersion.
var version = "dev"

var verbose bool

var (
	settingsService driving.SettingsService
	runtimeFactory  RuntimeFactory
	metadataLoader  MetadataLoader
	sidecarSuffix   string
)

// Runtime is the wired pipeline one command works with.
type Runtime struct {
	Settings  domain.AppSettings
	Ingestion driving.IngestionOrchestrator
	Retrieval driving.RetrievalService

	// Session serves interactive queries, dropping superseded results.
	Session driving.QuerySession

	// Close releases the store and scratch resources.
	Close func() error
}

// RuntimeFactory builds a Runtime from settings. Commands call it lazily so
// that settings and version commands never open the store.
type RuntimeFactory func(ctx context.Context, settings domain.AppSettings) (*Runtime, error)

// MetadataLoader reads metadata prepared next to a PDF.
// The boolean is false when none exists.
type MetadataLoader func(pdfPath string) (domain.DocumentMetadata, bool, error)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Personal research library",
	Long: `folio ingests PDFs dropped into the library's intake directory, reads
their text (directly, or by OCR for scanned pages), embeds it into a local
vector store and answers questions with cited passages.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetSettingsService sets the settings service used by commands.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetRuntimeFactory sets how commands build the ingestion pipeline.
func SetRuntimeFactory(f RuntimeFactory) {
	runtimeFactory = f
}

// SetMetadataLoader sets how ingest and watch find sidecar metadata.
// suffix is appended to a PDF's path to name its sidecar file.
func SetMetadataLoader(suffix string, l MetadataLoader) {
	sidecarSuffix = suffix
	metadataLoader = l
}

// loadSettings returns validated settings with overrides applied.
func loadSettings(overrides ...func(*domain.AppSettings)) (domain.AppSettings, error) {
	if settingsService == nil {
		return domain.AppSettings{}, errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return domain.AppSettings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	for _, o := range overrides {
		o(settings)
	}
	return *settings, nil
}

// openRuntime builds the pipeline for one command.
func openRuntime(ctx context.Context, overrides ...func(*domain.AppSettings)) (*Runtime, error) {
	if runtimeFactory == nil {
		return nil, errors.New("runtime not configured")
	}
	settings, err := loadSettings(overrides...)
	if err != nil {
		return nil, err
	}
	rt, err := runtimeFactory(ctx, settings)
	if err != nil {
		return nil, err
	}
	if rt.Close == nil {
		rt.Close = func() error { return nil }
	}
	return rt, nil
}

func closeRuntime(rt *Runtime) {
	if err := rt.Close(); err != nil {
		logger.Warn("closing runtime: %v", err)
	}
}
