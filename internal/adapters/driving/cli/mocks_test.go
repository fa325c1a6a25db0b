package cli

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	getErr      error
	setErr      error
	validateErr error
	sets        map[string]string
	saved       *domain.AppSettings
}

func newMockSettingsService(root string) *mockSettingsService {
	s := domain.DefaultAppSettings()
	s.Library.Root = root
	return &mockSettingsService{settings: s, sets: make(map[string]string)}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	s := *settings
	m.saved = &s
	m.settings = s
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.sets[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	keys := make([]string, 0)
	for k := range m.settings.Values() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

// mockRetrievalService implements driving.RetrievalService for testing.
type mockRetrievalService struct {
	results []domain.CitedResult
	prompts []string
}

func (m *mockRetrievalService) Query(_ context.Context, prompt string) []domain.CitedResult {
	m.prompts = append(m.prompts, prompt)
	return m.results
}

// mockIngestion implements driving.IngestionOrchestrator for testing.
type mockIngestion struct {
	mu        sync.Mutex
	docs      []domain.Document
	discErr   error
	states    map[string]domain.IngestionState
	submitted map[string]domain.DocumentMetadata
	ingested  []string
}

func (m *mockIngestion) Discover(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.discErr
}

func (m *mockIngestion) Ingest(_ context.Context, doc domain.Document) domain.IngestionReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingested = append(m.ingested, doc.Path)

	state := domain.StateArchived
	if s, ok := m.states[doc.Path]; ok {
		state = s
	}
	report := domain.IngestionReport{Document: doc, State: state}
	switch state {
	case domain.StateArchived:
		meta := m.submitted[doc.Path]
		report.Pages, report.Chunks, report.Stored = 2, 2, 2
		report.ArchivePath = "/lib/processed/" + meta.ArchiveName()
	case domain.StateFailed:
		report.Err = errors.New("no text")
	}
	return report
}

func (m *mockIngestion) IngestAll(ctx context.Context) ([]domain.IngestionReport, error) {
	reports := make([]domain.IngestionReport, 0, len(m.docs))
	for _, d := range m.docs {
		reports = append(reports, m.Ingest(ctx, d))
	}
	return reports, nil
}

func (m *mockIngestion) SubmitMetadata(_ context.Context, path string, meta domain.DocumentMetadata) error {
	if err := meta.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitted == nil {
		m.submitted = make(map[string]domain.DocumentMetadata)
	}
	m.submitted[path] = meta
	return nil
}

func (m *mockIngestion) Pending() []string { return nil }

// mockQuerySession implements driving.QuerySession for testing.
type mockQuerySession struct {
	closed bool
}

func (m *mockQuerySession) Query(_ context.Context, _ string) ([]domain.CitedResult, bool) {
	return nil, true
}

func (m *mockQuerySession) Close() { m.closed = true }

// testEnv is the wiring installed by setupTestServices.
type testEnv struct {
	settings  *mockSettingsService
	retrieval *mockRetrievalService
	ingestion *mockIngestion
	session   *mockQuerySession

	// opened is the settings the last runtime was built with.
	opened domain.AppSettings
	closed int
}

// setupTestServices installs mock services and restores the package state
// when the test ends.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		settings: newMockSettingsService(t.TempDir()),
		retrieval: &mockRetrievalService{results: []domain.CitedResult{{
			Record: domain.ResultRecord{
				Contents: "Entropy  of an isolated\nsystem never decreases.",
				Distance: 0.125,
			},
			Citation: "Smith(2020) Thermodynamics.pdf. Pgs. 3",
		}}},
		ingestion: &mockIngestion{},
		session:   &mockQuerySession{},
	}

	oldSettings, oldFactory := settingsService, runtimeFactory
	oldLoader, oldSuffix := metadataLoader, sidecarSuffix
	oldTerminal := isTerminal

	settingsService = env.settings
	runtimeFactory = func(_ context.Context, s domain.AppSettings) (*Runtime, error) {
		env.opened = s
		return &Runtime{
			Settings:  s,
			Ingestion: env.ingestion,
			Retrieval: env.retrieval,
			Session:   env.session,
			Close: func() error {
				env.closed++
				return nil
			},
		}, nil
	}
	metadataLoader, sidecarSuffix = nil, ""
	isTerminal = func() bool { return false }

	t.Cleanup(func() {
		settingsService, runtimeFactory = oldSettings, oldFactory
		metadataLoader, sidecarSuffix = oldLoader, oldSuffix
		isTerminal = oldTerminal
	})
	return env
}

// executeCommand runs the root command with args and stdin, returning the output.
// Flag variables are reset afterwards so tests do not leak into each other.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags()
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func resetFlags() {
	verbose = false
	searchLimit, searchJSON = 10, false
	ingestTitle, ingestAuthors, ingestPublisher, ingestDate = "", "", "", ""
	ingestNoPrompt = false
	watchNoScan = false
	tuiNoWatch = false
}

// captureOutput redirects a command's output to a buffer until the test ends.
func captureOutput(t *testing.T, cmd *cobra.Command) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	t.Cleanup(func() { cmd.SetOut(nil) })
	return buf
}
