package domain

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Readability records how text can be pulled out of a PDF.
type Readability int

const (
	// ReadabilityUnknown means the document has not been classified yet.
	ReadabilityUnknown Readability = iota

	// ReadabilityStructured means the PDF carries a text layer.
	ReadabilityStructured

	// ReadabilityUnstructured means the PDF must be rasterized and OCR'd.
	ReadabilityUnstructured
)

// String returns the string representation.
func (r Readability) String() string {
	switch r {
	case ReadabilityStructured:
		return "structured"
	case ReadabilityUnstructured:
		return "unstructured"
	default:
		return "unknown"
	}
}

// DocumentMetadata is the bibliographic information supplied by the user.
type DocumentMetadata struct {
	Title         string `toml:"title" json:"title"`
	Authors       string `toml:"authors" json:"authors"`
	Publisher     string `toml:"publisher" json:"publisher"`
	DatePublished string `toml:"date_published" json:"date_published"`
}

// IsZero reports whether no field has been filled in.
func (m DocumentMetadata) IsZero() bool {
	return m == DocumentMetadata{}
}

// Validate checks the metadata is usable for ingestion.
// Only the title is mandatory: it names the archived file and the citation source.
func (m DocumentMetadata) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return ErrInvalidInput
	}
	return nil
}

var archiveNameSeparators = regexp.MustCompile(`[\s,]+`)

// ArchiveName returns the file stem used when the document is archived:
// title, authors and publication date joined by underscores, with every
// run of whitespace or commas collapsed to a single underscore.
func (m DocumentMetadata) ArchiveName() string {
	name := m.Title + "_" + m.Authors + "_" + m.DatePublished
	return archiveNameSeparators.ReplaceAllString(name, "_")
}

// Document is one PDF moving through the ingestion pipeline.
type Document struct {
	// Path is the location of the file in the intake directory.
	Path string

	// Readability is set once by the classifier and cached for the run.
	Readability Readability

	// Metadata is empty until the user submits it.
	Metadata DocumentMetadata

	// State is the current ingestion state.
	State IngestionState
}

// NewDocument creates a freshly discovered document.
func NewDocument(path string) Document {
	return Document{Path: path, State: StateDiscovered}
}

// Name returns the file name without directory.
func (d Document) Name() string {
	return filepath.Base(d.Path)
}

// Stem returns the file name without directory or extension.
func (d Document) Stem() string {
	name := d.Name()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// ResetMetadata clears the bibliographic fields after archiving.
func (d *Document) ResetMetadata() {
	d.Metadata = DocumentMetadata{}
}

// PageText is the extracted text of one physical page.
type PageText struct {
	// PageNumber is 1-based.
	PageNumber int

	// Text may be empty when the page carries no extractable text.
	Text string
}

// PageRegion is a rectangular area of a rasterized page that likely holds text.
type PageRegion struct {
	X      int
	Y      int
	Width  int
	Height int

	// Order is the position in which the segmenter discovered the region.
	Order int
}

// Empty reports whether the region covers no pixels.
func (r PageRegion) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Chunk is a page-scoped unit of text destined for embedding.
type Chunk struct {
	// ID is assigned when the chunk is stored.
	ID string

	// PageNumber is the 1-based page the text came from.
	PageNumber int

	// Contents is the chunk text.
	Contents string
}
