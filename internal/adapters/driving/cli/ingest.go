package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var (
	ingestTitle     string
	ingestAuthors   string
	ingestPublisher string
	ingestDate      string
	ingestNoPrompt  bool
)

// isTerminal reports whether metadata can be prompted for.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [pdf...]",
	Short: "Ingest PDFs from the intake directory",
	Long: `Ingests the given PDFs, or every PDF in the library's intake directory.

Each document needs at least a title. Metadata is taken from the flags (single
document only), then from a "<file>.pdf.meta.toml" sidecar, then from an
interactive prompt. Documents without metadata are left in intake.

Ingested documents are moved to the archive directory and renamed
"Title_Authors_Date.pdf".`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "document title")
	ingestCmd.Flags().StringVar(&ingestAuthors, "authors", "", "document authors")
	ingestCmd.Flags().StringVar(&ingestPublisher, "publisher", "", "document publisher")
	ingestCmd.Flags().StringVar(&ingestDate, "date", "", "publication date")
	ingestCmd.Flags().BoolVar(&ingestNoPrompt, "no-prompt", false, "never prompt for metadata")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	flagMeta := domain.DocumentMetadata{
		Title:         strings.TrimSpace(ingestTitle),
		Authors:       ingestAuthors,
		Publisher:     ingestPublisher,
		DatePublished: ingestDate,
	}

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	docs, err := documentsFor(cmd, rt, args)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		cmd.Printf("No PDFs in %s\n", rt.Settings.Library.IntakeDir())
		return nil
	}
	if flagMeta.Title != "" && len(docs) > 1 {
		return fmt.Errorf("%w: metadata flags apply to a single document, got %d", domain.ErrInvalidInput, len(docs))
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	interactive := !ingestNoPrompt && isTerminal()

	var archived, failed int
	for _, doc := range docs {
		meta, ok, err := resolveMetadata(cmd, doc, flagMeta, reader, interactive)
		if err != nil {
			cmd.Printf("  skipped %s: %v\n", doc.Name(), err)
			continue
		}
		if !ok {
			cmd.Printf("  skipped %s: no metadata (pass --title or add a sidecar)\n", doc.Name())
			continue
		}

		if err := rt.Ingestion.SubmitMetadata(ctx, doc.Path, meta); err != nil {
			cmd.Printf("  skipped %s: %v\n", doc.Name(), err)
			continue
		}

		report := rt.Ingestion.Ingest(ctx, doc)
		printReport(cmd, report)
		switch report.State {
		case domain.StateArchived:
			archived++
		case domain.StateFailed:
			failed++
		}

		if ctx.Err() != nil {
			break
		}
	}

	cmd.Printf("\nIngested %d of %d document(s).\n", archived, len(docs))
	if failed > 0 {
		return fmt.Errorf("%d document(s) failed", failed)
	}
	return ctx.Err()
}

// documentsFor returns the named PDFs, or the intake listing when none are named.
func documentsFor(cmd *cobra.Command, rt *Runtime, args []string) ([]domain.Document, error) {
	if len(args) == 0 {
		return rt.Ingestion.Discover(cmd.Context())
	}

	docs := make([]domain.Document, 0, len(args))
	for _, arg := range args {
		path, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil, fmt.Errorf("%w: %s is not a PDF", domain.ErrUnsupportedType, arg)
		}
		docs = append(docs, domain.NewDocument(path))
	}
	return docs, nil
}

// resolveMetadata picks metadata from flags, then a sidecar, then a prompt.
func resolveMetadata(
	cmd *cobra.Command,
	doc domain.Document,
	flagMeta domain.DocumentMetadata,
	reader *bufio.Reader,
	interactive bool,
) (domain.DocumentMetadata, bool, error) {
	if flagMeta.Title != "" {
		return flagMeta, true, nil
	}

	if metadataLoader != nil {
		meta, ok, err := metadataLoader(doc.Path)
		if err != nil {
			return domain.DocumentMetadata{}, false, err
		}
		if ok {
			return meta, true, nil
		}
	}

	if !interactive {
		return domain.DocumentMetadata{}, false, nil
	}
	return promptMetadata(cmd, doc, reader)
}

func promptMetadata(cmd *cobra.Command, doc domain.Document, reader *bufio.Reader) (domain.DocumentMetadata, bool, error) {
	cmd.Printf("\nMetadata for %s (empty title skips)\n", doc.Name())

	var meta domain.DocumentMetadata
	cmd.Print("  Title: ")
	meta.Title = readLine(reader)
	if meta.Title == "" {
		return meta, false, nil
	}
	cmd.Print("  Authors: ")
	meta.Authors = readLine(reader)
	cmd.Print("  Publisher: ")
	meta.Publisher = readLine(reader)
	cmd.Print("  Date published: ")
	meta.DatePublished = readLine(reader)
	return meta, true, nil
}

func printReport(cmd *cobra.Command, r domain.IngestionReport) {
	name := r.Document.Name()
	switch r.State {
	case domain.StateArchived:
		cmd.Printf("  ok      %s -> %s (%d pages, %d/%d chunks stored)\n",
			name, filepath.Base(r.ArchivePath), r.Pages, r.Stored, r.Chunks)
		if r.Skipped > 0 {
			cmd.Printf("          %d chunk(s) skipped\n", r.Skipped)
		}
	case domain.StateFailed:
		cmd.Printf("  failed  %s: %v\n", name, r.Err)
	default:
		if r.Err != nil {
			cmd.Printf("  stopped %s: %v\n", name, r.Err)
		}
	}
}
