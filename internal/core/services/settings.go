package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvPrefix prefixes environment overrides: embedding.api_key reads FOLIO_EMBEDDING_API_KEY.
const EnvPrefix = "FOLIO_"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLibraryRoot       = "library.root"
	keyLibraryCollection = "library.collection"
	keyStoreBackend      = "store.backend"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedDimensions   = "embedding.dimensions"
	keyEmbedRate         = "embedding.requests_per_second"
	keyExtractDPI        = "extraction.dpi"
	keyExtractWidth      = "extraction.page_width"
	keyExtractOrder      = "extraction.reading_order"
	keyExtractWorkers    = "extraction.ocr_workers"
	keyExtractKeep       = "extraction.keep_images"
	keyExtractPdftoppm   = "extraction.pdftoppm"
	keyExtractTesseract  = "extraction.tesseract"
	keySplitterEnabled   = "splitter.enabled"
	keySplitterSize      = "splitter.chunk_size"
	keySplitterOverlap   = "splitter.overlap"
	keySplitterSeparator = "splitter.separator"
	keyRetrievalLimit    = "retrieval.limit"
	keyDeduplicate       = "ingestion.deduplicate"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindBool
)

var settingKinds = map[string]keyKind{
	keyLibraryRoot:       kindString,
	keyLibraryCollection: kindString,
	keyStoreBackend:      kindString,
	keyEmbedProvider:     kindString,
	keyEmbedModel:        kindString,
	keyEmbedBaseURL:      kindString,
	keyEmbedAPIKey:       kindString,
	keyEmbedDimensions:   kindInt,
	keyEmbedRate:         kindFloat,
	keyExtractDPI:        kindInt,
	keyExtractWidth:      kindInt,
	keyExtractOrder:      kindString,
	keyExtractWorkers:    kindInt,
	keyExtractKeep:       kindBool,
	keyExtractPdftoppm:   kindString,
	keyExtractTesseract:  kindString,
	keySplitterEnabled:   kindBool,
	keySplitterSize:      kindInt,
	keySplitterOverlap:   kindInt,
	keySplitterSeparator: kindString,
	keyRetrievalLimit:    kindInt,
	keyDeduplicate:       kindBool,
}

// SettingsService manages application settings.
// Values resolve in order: FOLIO_* environment, config file, defaults.
type SettingsService struct {
	configStore driven.ConfigStore
	defaultRoot string
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
// defaultRoot is used for library.root when neither the file nor the environment sets it.
func NewSettingsService(configStore driven.ConfigStore, defaultRoot string) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		defaultRoot: defaultRoot,
		lookupEnv:   os.LookupEnv,
	}
}

// EnvKey returns the environment variable that overrides key.
func EnvKey(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := s.GetDefaults()

	settings := &domain.AppSettings{
		Library: domain.LibrarySettings{
			Root:       s.getString(keyLibraryRoot, defaults.Library.Root),
			Collection: s.getString(keyLibraryCollection, defaults.Library.Collection),
		},
		Store: domain.StoreSettings{
			Backend: domain.StoreBackend(s.getString(keyStoreBackend, string(defaults.Store.Backend))),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          domain.AIProvider(s.getString(keyEmbedProvider, string(defaults.Embedding.Provider))),
			BaseURL:           s.getString(keyEmbedBaseURL, ""),
			APIKey:            s.getString(keyEmbedAPIKey, ""),
			RequestsPerSecond: s.getFloat(keyEmbedRate, defaults.Embedding.RequestsPerSecond),
		},
		Extraction: domain.ExtractionSettings{
			DPI:          s.getInt(keyExtractDPI, defaults.Extraction.DPI),
			PageWidth:    s.getInt(keyExtractWidth, defaults.Extraction.PageWidth),
			ReadingOrder: domain.ReadingOrder(s.getString(keyExtractOrder, string(defaults.Extraction.ReadingOrder))),
			OCRWorkers:   s.getInt(keyExtractWorkers, defaults.Extraction.OCRWorkers),
			KeepImages:   s.getBool(keyExtractKeep, defaults.Extraction.KeepImages),
			Pdftoppm:     s.getString(keyExtractPdftoppm, defaults.Extraction.Pdftoppm),
			Tesseract:    s.getString(keyExtractTesseract, defaults.Extraction.Tesseract),
		},
		Splitter: domain.SplitterSettings{
			Enabled:   s.getBool(keySplitterEnabled, defaults.Splitter.Enabled),
			ChunkSize: s.getInt(keySplitterSize, defaults.Splitter.ChunkSize),
			Overlap:   s.getInt(keySplitterOverlap, defaults.Splitter.Overlap),
			Separator: s.getString(keySplitterSeparator, defaults.Splitter.Separator),
		},
		Retrieval: domain.RetrievalSettings{
			Limit: s.getInt(keyRetrievalLimit, defaults.Retrieval.Limit),
		},
		Ingestion: domain.IngestionSettings{
			Deduplicate: s.getBool(keyDeduplicate, defaults.Ingestion.Deduplicate),
		},
	}

	// Model and dimensions follow the provider unless set explicitly.
	model := domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	if model == "" {
		model = defaults.Embedding.Model
	}
	settings.Embedding.Model = s.getString(keyEmbedModel, model)

	dims := defaults.Embedding.Dimensions
	if known, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		dims = known
	}
	settings.Embedding.Dimensions = s.getInt(keyEmbedDimensions, dims)

	if settings.Embedding.Provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = defaults.Embedding.BaseURL
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if settings == nil {
		return fmt.Errorf("%w: nil settings", domain.ErrInvalidInput)
	}

	values := map[string]any{
		keyLibraryRoot:       settings.Library.Root,
		keyLibraryCollection: settings.Library.Collection,
		keyStoreBackend:      string(settings.Store.Backend),
		keyEmbedProvider:     string(settings.Embedding.Provider),
		keyEmbedModel:        settings.Embedding.Model,
		keyEmbedBaseURL:      settings.Embedding.BaseURL,
		keyEmbedAPIKey:       settings.Embedding.APIKey,
		keyEmbedDimensions:   settings.Embedding.Dimensions,
		keyEmbedRate:         settings.Embedding.RequestsPerSecond,
		keyExtractDPI:        settings.Extraction.DPI,
		keyExtractWidth:      settings.Extraction.PageWidth,
		keyExtractOrder:      string(settings.Extraction.ReadingOrder),
		keyExtractWorkers:    settings.Extraction.OCRWorkers,
		keyExtractKeep:       settings.Extraction.KeepImages,
		keyExtractPdftoppm:   settings.Extraction.Pdftoppm,
		keyExtractTesseract:  settings.Extraction.Tesseract,
		keySplitterEnabled:   settings.Splitter.Enabled,
		keySplitterSize:      settings.Splitter.ChunkSize,
		keySplitterOverlap:   settings.Splitter.Overlap,
		keySplitterSeparator: settings.Splitter.Separator,
		keyRetrievalLimit:    settings.Retrieval.Limit,
		keyDeduplicate:       settings.Ingestion.Deduplicate,
	}

	for _, key := range s.Keys() {
		if err := s.configStore.Set(key, values[key]); err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
	}
	return nil
}

// Set parses value according to the key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseValue(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	switch key {
	case keyEmbedProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: unsupported embedding provider %q", domain.ErrInvalidInput, value)
		}
	case keyStoreBackend:
		if !domain.StoreBackend(value).IsValid() {
			return fmt.Errorf("%w: unsupported store backend %q", domain.ErrInvalidInput, value)
		}
	case keyExtractOrder:
		if !domain.ReadingOrder(value).IsValid() {
			return fmt.Errorf("%w: unsupported reading order %q", domain.ErrInvalidInput, value)
		}
	}

	return s.configStore.Set(key, parsed)
}

// Keys returns every recognised settings key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	switch {
	case strings.TrimSpace(settings.Library.Root) == "":
		return fmt.Errorf("%w: library root is not set", domain.ErrInvalidInput)
	case strings.TrimSpace(settings.Library.Collection) == "":
		return fmt.Errorf("%w: collection name is empty", domain.ErrCollectionName)
	case !settings.Embedding.Provider.IsValid():
		return fmt.Errorf("%w: unsupported embedding provider %q", domain.ErrInvalidInput, settings.Embedding.Provider)
	case settings.Embedding.Model == "":
		return fmt.Errorf("%w: embedding model is not set", domain.ErrInvalidInput)
	case settings.Embedding.Dimensions <= 0:
		return fmt.Errorf("%w: embedding dimensions must be positive", domain.ErrInvalidInput)
	case settings.Embedding.RequestsPerSecond < 0:
		return fmt.Errorf("%w: requests_per_second cannot be negative", domain.ErrInvalidInput)
	case !settings.Store.Backend.IsValid():
		return fmt.Errorf("%w: unsupported store backend %q", domain.ErrInvalidInput, settings.Store.Backend)
	case settings.Extraction.DPI <= 0:
		return fmt.Errorf("%w: extraction dpi must be positive", domain.ErrInvalidInput)
	case settings.Extraction.PageWidth <= 0:
		return fmt.Errorf("%w: page width must be positive", domain.ErrInvalidInput)
	case !settings.Extraction.ReadingOrder.IsValid():
		return fmt.Errorf("%w: unsupported reading order %q", domain.ErrInvalidInput, settings.Extraction.ReadingOrder)
	case settings.Extraction.OCRWorkers < 0:
		return fmt.Errorf("%w: ocr_workers cannot be negative", domain.ErrInvalidInput)
	case settings.Retrieval.Limit <= 0:
		return fmt.Errorf("%w: retrieval limit must be positive", domain.ErrInvalidInput)
	}

	if settings.Splitter.Enabled {
		if settings.Splitter.ChunkSize <= 0 {
			return fmt.Errorf("%w: chunk_size must be positive", domain.ErrInvalidInput)
		}
		if settings.Splitter.Overlap < 0 || settings.Splitter.Overlap >= settings.Splitter.ChunkSize {
			return fmt.Errorf("%w: overlap must be in [0, chunk_size)", domain.ErrInvalidInput)
		}
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	defaults := domain.DefaultAppSettings()
	defaults.Library.Root = s.defaultRoot
	return defaults
}

func parseValue(kind keyKind, value string) (any, error) {
	switch kind {
	case kindInt:
		return strconv.Atoi(strings.TrimSpace(value))
	case kindFloat:
		return strconv.ParseFloat(strings.TrimSpace(value), 64)
	case kindBool:
		return strconv.ParseBool(strings.TrimSpace(value))
	default:
		return value, nil
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) env(key string) (string, bool) {
	if s.lookupEnv == nil {
		return "", false
	}
	v, ok := s.lookupEnv(EnvKey(key))
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if v, ok := s.env(key); ok {
		return v
	}
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if v, ok := s.env(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if v, ok := s.env(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if v, ok := s.env(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}
