package cli

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/logger"
)

var tuiNoWatch bool

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for folio.

The TUI searches the library with cited results, lists documents waiting in
the intake directory and lets you fill in their metadata. Unless --no-watch
is given, the intake directory is watched and new PDFs are ingested while
the TUI runs.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Search / Select / Show passage
  Tab      - Next metadata field
  Ctrl+S   - Submit metadata
  Esc      - Back / Cancel
  q        - Quit from the menu`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&tuiNoWatch, "no-watch", false, "do not watch the intake directory")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	session := rt.Session
	if session == nil {
		return fmt.Errorf("failed to create TUI: %w", tui.ErrMissingQuerySession)
	}
	defer session.Close()

	app, err := tui.NewApp(tui.NewPorts(session, rt.Ingestion, settingsService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())
	p := app.Program()

	// Log lines would tear the alternate screen.
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	if !tuiNoWatch && rt.Ingestion != nil {
		w := newWatcher(rt, true, logger.Discard(), func(r domain.IngestionReport) {
			p.Send(messages.IngestionReported{Report: r})
		})
		stop := runWatcherInBackground(cmd.Context(), w)
		defer stop()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
