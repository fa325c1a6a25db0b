package cli

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/adapters/driving/watch"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/logger"
)

var watchNoScan bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Ingest PDFs as they arrive in the intake directory",
	Long: `Watches the intake directory and ingests every PDF dropped into it.

A document waits for metadata until a "<file>.pdf.meta.toml" sidecar appears
next to it or metadata is submitted through the MCP server or the TUI.
Press Ctrl+C to stop; documents still waiting stay in intake.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchNoScan, "no-scan", false, "ignore PDFs already in intake")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	var mu sync.Mutex
	w := newWatcher(rt, !watchNoScan, logger.Default(), func(r domain.IngestionReport) {
		mu.Lock()
		defer mu.Unlock()
		printReport(cmd, r)
	})

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", rt.Settings.Library.IntakeDir())
	return w.Run(cmd.Context())
}

// newWatcher wires the intake watcher to the runtime's orchestrator.
func newWatcher(rt *Runtime, scan bool, log *logger.Logger, onReport func(domain.IngestionReport)) *watch.Watcher {
	cfg := watch.Config{
		Dir:           rt.Settings.Library.IntakeDir(),
		InitialScan:   scan,
		SidecarSuffix: sidecarSuffix,
	}
	if metadataLoader != nil {
		cfg.LoadSidecar = watch.MetadataLoader(metadataLoader)
	}

	var opts []watch.Option
	if onReport != nil {
		opts = append(opts, watch.WithReportHandler(onReport))
	}
	return watch.New(rt.Ingestion, cfg, log.With("watch"), opts...)
}

// runWatcherInBackground starts the watcher and returns a function that
// stops it and waits for it to exit.
func runWatcherInBackground(ctx context.Context, w *watch.Watcher) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Run(ctx); err != nil {
			logger.Error("watcher stopped: %v", err)
		}
	}()
	return func() {
		cancel()
		<-done
	}
}
