package domain

import (
	"path/filepath"
	"strconv"
)

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is any OpenAI-compatible embeddings endpoint.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI-compatible API"
	default:
		return unknownDescription
	}
}

// StoreBackend selects the vector store implementation.
type StoreBackend string

// Available store backends.
const (
	StoreSQLite StoreBackend = "sqlite"
	StoreBadger StoreBackend = "badger"
	StoreMemory StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreSQLite, StoreBadger, StoreMemory:
		return true
	default:
		return false
	}
}

// ReadingOrder controls how OCR'd regions of a page are ordered.
type ReadingOrder string

// Available reading orders.
const (
	// ReadingOrderPosition sorts regions top-to-bottom, then left-to-right.
	// It is the default.
	ReadingOrderPosition ReadingOrder = "position"

	// ReadingOrderReverse reverses the segmenter's discovery order. This is
	// how pages were read before position sorting and is kept for
	// compatibility with libraries built that way.
	ReadingOrderReverse ReadingOrder = "reverse"
)

// IsValid returns true if the reading order is recognised.
func (o ReadingOrder) IsValid() bool {
	return o == ReadingOrderPosition || o == ReadingOrderReverse
}

// LibrarySettings locates the library on disk.
type LibrarySettings struct {
	// Root holds the intake, archive, scratch and store directories.
	Root string

	// Collection is the vector collection documents are ingested into.
	Collection string
}

// IntakeDir is where new PDFs are dropped.
func (l LibrarySettings) IntakeDir() string { return filepath.Join(l.Root, "uploaded") }

// ArchiveDir is where ingested PDFs are moved.
func (l LibrarySettings) ArchiveDir() string { return filepath.Join(l.Root, "processed") }

// ScratchDir holds rasterized page images.
func (l LibrarySettings) ScratchDir() string { return filepath.Join(l.Root, "image_store") }

// StoreDir holds the vector store files.
func (l LibrarySettings) StoreDir() string { return filepath.Join(l.Root, "db") }

// Dirs returns every directory the library needs.
func (l LibrarySettings) Dirs() []string {
	return []string{l.IntakeDir(), l.ArchiveDir(), l.ScratchDir(), l.StoreDir()}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for hosted OpenAI-compatible services).
	APIKey string

	// Dimensions is the vector size the collection expects.
	Dimensions int

	// RequestsPerSecond throttles embedding calls. Zero disables throttling.
	RequestsPerSecond float64
}

// StoreSettings selects the vector store.
type StoreSettings struct {
	Backend StoreBackend
}

// ExtractionSettings configures the unstructured (OCR) path.
type ExtractionSettings struct {
	// DPI is the rasterization resolution.
	DPI int

	// PageWidth is the right edge every region box is clamped to.
	PageWidth int

	// ReadingOrder orders regions before their text is joined.
	ReadingOrder ReadingOrder

	// OCRWorkers bounds concurrent OCR calls per page.
	OCRWorkers int

	// KeepImages leaves rasterized pages in the scratch directory.
	KeepImages bool

	// Pdftoppm is the path or name of the rasterizer binary.
	Pdftoppm string

	// Tesseract is the path or name of the OCR binary.
	Tesseract string
}

// SplitterSettings configures the optional character splitter.
type SplitterSettings struct {
	Enabled   bool
	ChunkSize int
	Overlap   int
	Separator string
}

// RetrievalSettings configures queries.
type RetrievalSettings struct {
	// Limit is the number of nearest neighbours returned.
	Limit int
}

// IngestionSettings configures the orchestrator.
type IngestionSettings struct {
	// Deduplicate derives chunk ids from their content so re-ingestion overwrites.
	Deduplicate bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	Library    LibrarySettings
	Embedding  EmbeddingSettings
	Store      StoreSettings
	Extraction ExtractionSettings
	Splitter   SplitterSettings
	Retrieval  RetrievalSettings
	Ingestion  IngestionSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The library root is left empty; the settings service fills it from the config directory.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Library: LibrarySettings{
			Collection: DefaultCollection,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderOllama,
			Model:      "nomic-embed-text",
			BaseURL:    "http://localhost:11434",
			Dimensions: 768, // nomic-embed-text default
		},
		Store: StoreSettings{
			Backend: StoreSQLite,
		},
		Extraction: ExtractionSettings{
			DPI:          400,
			PageWidth:    2800,
			ReadingOrder: ReadingOrderPosition,
			Pdftoppm:     "pdftoppm",
			Tesseract:    "tesseract",
		},
		Splitter: SplitterSettings{
			Enabled:   false,
			ChunkSize: 800,
			Overlap:   200,
			Separator: "\n",
		},
		Retrieval: RetrievalSettings{
			Limit: 10,
		},
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// Values flattens the settings into their config keys, formatted for display.
// The API key is returned as stored; callers mask it.
func (s AppSettings) Values() map[string]string {
	return map[string]string{
		"library.root":                  s.Library.Root,
		"library.collection":            s.Library.Collection,
		"store.backend":                 string(s.Store.Backend),
		"embedding.provider":            string(s.Embedding.Provider),
		"embedding.model":               s.Embedding.Model,
		"embedding.base_url":            s.Embedding.BaseURL,
		"embedding.api_key":             s.Embedding.APIKey,
		"embedding.dimensions":          strconv.Itoa(s.Embedding.Dimensions),
		"embedding.requests_per_second": strconv.FormatFloat(s.Embedding.RequestsPerSecond, 'g', -1, 64),
		"extraction.dpi":                strconv.Itoa(s.Extraction.DPI),
		"extraction.page_width":         strconv.Itoa(s.Extraction.PageWidth),
		"extraction.reading_order":      string(s.Extraction.ReadingOrder),
		"extraction.ocr_workers":        strconv.Itoa(s.Extraction.OCRWorkers),
		"extraction.keep_images":        strconv.FormatBool(s.Extraction.KeepImages),
		"extraction.pdftoppm":           s.Extraction.Pdftoppm,
		"extraction.tesseract":          s.Extraction.Tesseract,
		"splitter.enabled":              strconv.FormatBool(s.Splitter.Enabled),
		"splitter.chunk_size":           strconv.Itoa(s.Splitter.ChunkSize),
		"splitter.overlap":              strconv.Itoa(s.Splitter.Overlap),
		"splitter.separator":            strconv.Quote(s.Splitter.Separator),
		"retrieval.limit":               strconv.Itoa(s.Retrieval.Limit),
		"ingestion.deduplicate":         strconv.FormatBool(s.Ingestion.Deduplicate),
	}
}
