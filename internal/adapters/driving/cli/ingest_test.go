package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"), 0o600))
	return path
}

func TestIngestCmd_Flags(t *testing.T) {
	for _, name := range []string{"title", "authors", "publisher", "date", "no-prompt"} {
		assert.NotNil(t, ingestCmd.Flags().Lookup(name), name)
	}
}

func TestIngestCmd_NamedFileWithFlags(t *testing.T) {
	env := setupTestServices(t)
	path := writePDF(t, t.TempDir(), "thermo.pdf")

	out, err := executeCommand(t, "", "ingest",
		"--title", "Thermodynamics", "--authors", "Smith", "--date", "2020", path)

	require.NoError(t, err)
	assert.Equal(t, domain.DocumentMetadata{
		Title:         "Thermodynamics",
		Authors:       "Smith",
		DatePublished: "2020",
	}, env.ingestion.submitted[path])
	assert.Equal(t, []string{path}, env.ingestion.ingested)
	assert.Contains(t, out, "ok      thermo.pdf -> Thermodynamics_Smith_2020 (2 pages, 2/2 chunks stored)")
	assert.Contains(t, out, "Ingested 1 of 1 document(s).")
}

func TestIngestCmd_RejectsNonPDF(t *testing.T) {
	setupTestServices(t)
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := executeCommand(t, "", "ingest", "--title", "T", path)

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestIngestCmd_MissingFile(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "", "ingest", filepath.Join(t.TempDir(), "gone.pdf"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIngestCmd_FlagsNeedSingleDocument(t *testing.T) {
	env := setupTestServices(t)
	env.ingestion.docs = []domain.Document{
		domain.NewDocument("/intake/a.pdf"),
		domain.NewDocument("/intake/b.pdf"),
	}

	_, err := executeCommand(t, "", "ingest", "--title", "T")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, env.ingestion.ingested)
}

func TestIngestCmd_EmptyIntake(t *testing.T) {
	env := setupTestServices(t)

	out, err := executeCommand(t, "", "ingest")

	require.NoError(t, err)
	assert.Contains(t, out, "No PDFs in "+env.opened.Library.IntakeDir())
}

func TestIngestCmd_DiscoverError(t *testing.T) {
	env := setupTestServices(t)
	env.ingestion.discErr = errors.New("intake missing")

	_, err := executeCommand(t, "", "ingest")

	assert.EqualError(t, err, "intake missing")
}

func TestIngestCmd_UsesSidecar(t *testing.T) {
	env := setupTestServices(t)
	env.ingestion.docs = []domain.Document{
		domain.NewDocument("/intake/a.pdf"),
		domain.NewDocument("/intake/b.pdf"),
	}
	metadataLoader = func(path string) (domain.DocumentMetadata, bool, error) {
		if path == "/intake/a.pdf" {
			return domain.DocumentMetadata{Title: "Optics"}, true, nil
		}
		return domain.DocumentMetadata{}, false, nil
	}

	out, err := executeCommand(t, "", "ingest")

	require.NoError(t, err)
	assert.Equal(t, "Optics", env.ingestion.submitted["/intake/a.pdf"].Title)
	assert.Equal(t, []string{"/intake/a.pdf"}, env.ingestion.ingested)
	assert.Contains(t, out, "skipped b.pdf: no metadata")
	assert.Contains(t, out, "Ingested 1 of 2 document(s).")
}

func TestIngestCmd_SidecarError(t *testing.T) {
	env := setupTestServices(t)
	env.ingestion.docs = []domain.Document{domain.NewDocument("/intake/a.pdf")}
	metadataLoader = func(string) (domain.DocumentMetadata, bool, error) {
		return domain.DocumentMetadata{}, false, errors.New("bad toml")
	}

	out, err := executeCommand(t, "", "ingest")

	require.NoError(t, err)
	assert.Contains(t, out, "skipped a.pdf: bad toml")
	assert.Empty(t, env.ingestion.ingested)
}

func TestIngestCmd_Prompts(t *testing.T) {
	env := setupTestServices(t)
	env.ingestion.docs = []domain.Document{
		domain.NewDocument("/intake/a.pdf"),
		domain.NewDocument("/intake/b.pdf"),
	}
	isTerminal = func() bool { return true }

	// The second document is skipped with an empty title.
	out, err := executeCommand(t, "Optics\nJones, Lee\nAcme\n2019\n\n", "ingest")

	require.NoError(t, err)
	assert.Equal(t, domain.DocumentMetadata{
		Title:         "Optics",
		Authors:       "Jones, Lee",
		Publisher:     "Acme",
		DatePublished: "2019",
	}, env.ingestion.submitted["/intake/a.pdf"])
	assert.Equal(t, []string{"/intake/a.pdf"}, env.ingestion.ingested)
	assert.Contains(t, out, "Metadata for b.pdf")
}

func TestIngestCmd_NoPrompt(t *testing.T) {
	env := setupTestServices(t)
	env.ingestion.docs = []domain.Document{domain.NewDocument("/intake/a.pdf")}
	isTerminal = func() bool { return true }

	out, err := executeCommand(t, "Optics\n", "ingest", "--no-prompt")

	require.NoError(t, err)
	assert.NotContains(t, out, "Metadata for")
	assert.Empty(t, env.ingestion.ingested)
}

func TestIngestCmd_FailureReturnsError(t *testing.T) {
	env := setupTestServices(t)
	path := writePDF(t, t.TempDir(), "scan.pdf")
	env.ingestion.states = map[string]domain.IngestionState{path: domain.StateFailed}

	out, err := executeCommand(t, "", "ingest", "--title", "Scan", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 document(s) failed")
	assert.Contains(t, out, "failed  scan.pdf: no text")
}

func TestPrintReport_SkippedChunks(t *testing.T) {
	setupTestServices(t)
	buf := captureOutput(t, ingestCmd)

	printReport(ingestCmd, domain.IngestionReport{
		Document:    domain.NewDocument("/intake/a.pdf"),
		State:       domain.StateArchived,
		Pages:       3,
		Chunks:      3,
		Stored:      2,
		Skipped:     1,
		ArchivePath: "/lib/processed/A__",
	})
	printReport(ingestCmd, domain.IngestionReport{
		Document: domain.NewDocument("/intake/b.pdf"),
		State:    domain.StateAwaitingMetadata,
		Err:      errors.New("context canceled"),
	})

	assert.Contains(t, buf.String(), "1 chunk(s) skipped")
	assert.Contains(t, buf.String(), "stopped b.pdf: context canceled")
}
