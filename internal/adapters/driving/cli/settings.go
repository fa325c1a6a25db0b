package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// EmbeddingValidator checks an embedding configuration is reachable.
type EmbeddingValidator func(ctx context.Context, settings *domain.EmbeddingSettings) error

var embeddingValidator EmbeddingValidator

// SetEmbeddingValidator sets how the settings wizard verifies a provider.
func SetEmbeddingValidator(v EmbeddingValidator) {
	embeddingValidator = v
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the library location, embedding provider, vector
store, OCR extraction and retrieval options.

Settings live in config.toml in the folio config directory. Any key can be
overridden by an environment variable, e.g. FOLIO_EMBEDDING_MODEL for
embedding.model.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a single setting",
	Long:  `Set a single setting, e.g. "folio settings set store.backend badger". Run "folio settings keys" to list keys.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	RunE:  runSettingsKeys,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Interactively configure the embedding provider used for ingestion and search.`,
	RunE:  runSettingsEmbedding,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Library]")
	cmd.Printf("  Root: %s\n", settings.Library.Root)
	cmd.Printf("  Intake: %s\n", settings.Library.IntakeDir())
	cmd.Printf("  Archive: %s\n", settings.Library.ArchiveDir())
	cmd.Printf("  Collection: %s\n", settings.Library.Collection)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	if settings.Embedding.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
	}
	cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	if settings.Embedding.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %.1f req/s\n", settings.Embedding.RequestsPerSecond)
	}
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Backend: %s\n", settings.Store.Backend)
	cmd.Println()

	cmd.Println("[Extraction]")
	cmd.Printf("  DPI: %d\n", settings.Extraction.DPI)
	cmd.Printf("  Page width: %d\n", settings.Extraction.PageWidth)
	cmd.Printf("  Reading order: %s\n", settings.Extraction.ReadingOrder)
	if settings.Extraction.OCRWorkers > 0 {
		cmd.Printf("  OCR workers: %d\n", settings.Extraction.OCRWorkers)
	} else {
		cmd.Printf("  OCR workers: auto\n")
	}
	cmd.Printf("  Keep images: %s\n", yesNo(settings.Extraction.KeepImages))
	cmd.Println()

	cmd.Println("[Splitter]")
	if settings.Splitter.Enabled {
		cmd.Printf("  Enabled: yes\n")
		cmd.Printf("  Chunk size: %d\n", settings.Splitter.ChunkSize)
		cmd.Printf("  Overlap: %d\n", settings.Splitter.Overlap)
	} else {
		cmd.Printf("  Enabled: no (one chunk per page)\n")
	}
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Limit: %d\n", settings.Retrieval.Limit)
	cmd.Printf("  Deduplicate on ingest: %s\n", yesNo(settings.Ingestion.Deduplicate))
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Status: invalid (%v)\n", err)
	} else {
		cmd.Println("Status: ok")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return err
	}
	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	reader := bufio.NewReader(cmd.InOrStdin())
	return configureEmbeddingProvider(cmd, reader)
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Select Embedding Provider")
	providers := []domain.AIProvider{domain.AIProviderOllama, domain.AIProviderOpenAI}
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	defaultModel := domain.DefaultEmbeddingModels()[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	baseURL := settings.Embedding.BaseURL
	if provider != settings.Embedding.Provider || baseURL == "" {
		baseURL = defaultBaseURL(provider)
	}
	cmd.Printf("Enter base URL [%s]: ", baseURL)
	if u := readLine(reader); u != "" {
		baseURL = u
	}

	var apiKey string
	if provider == domain.AIProviderOpenAI {
		cmd.Print("Enter API key (empty for local servers): ")
		apiKey = readPassword(reader)
		cmd.Println()
	}

	dims := settings.Embedding.Dimensions
	if d, ok := domain.EmbeddingDimensions()[model]; ok {
		dims = d
	}
	cmd.Printf("Enter vector dimensions [%d]: ", dims)
	if input := readLine(reader); input != "" {
		d, err := strconv.Atoi(input)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: dimensions must be a positive integer", domain.ErrInvalidInput)
		}
		dims = d
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	settings.Embedding.BaseURL = baseURL
	settings.Embedding.APIKey = apiKey
	settings.Embedding.Dimensions = dims

	if embeddingValidator != nil {
		cmd.Print("Validating configuration... ")
		if err := embeddingValidator(cmd.Context(), &settings.Embedding); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("embedding configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

func defaultBaseURL(p domain.AIProvider) string {
	if p == domain.AIProviderOpenAI {
		return "https://api.openai.com/v1"
	}
	return "http://localhost:11434"
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func readPassword(reader *bufio.Reader) string {
	// Try to read password without echo
	if isTerminal() {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	// Fallback to regular input
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
