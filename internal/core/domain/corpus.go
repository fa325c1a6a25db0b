package domain

import "strconv"

// Metadata keys stored with every corpus entry.
const (
	MetaUniqueID      = "unique_id"
	MetaSource        = "source"
	MetaAuthors       = "authors"
	MetaPublisher     = "publisher"
	MetaDatePublished = "date_published"
	MetaPage          = "page"
)

// DefaultCollection is the collection documents are ingested into.
const DefaultCollection = "library"

// EntryMetadata is the metadata persisted alongside each embedded chunk.
type EntryMetadata struct {
	UniqueID      string
	Source        string
	Authors       string
	Publisher     string
	DatePublished string
	Page          string
}

// NewEntryMetadata builds the stored metadata for one chunk of a document.
func NewEntryMetadata(id string, meta DocumentMetadata, page int) EntryMetadata {
	return EntryMetadata{
		UniqueID:      id,
		Source:        meta.Title,
		Authors:       meta.Authors,
		Publisher:     meta.Publisher,
		DatePublished: meta.DatePublished,
		Page:          strconv.Itoa(page),
	}
}

// Map returns the metadata as the flat string map the vector store persists.
func (m EntryMetadata) Map() map[string]string {
	return map[string]string{
		MetaUniqueID:      m.UniqueID,
		MetaSource:        m.Source,
		MetaAuthors:       m.Authors,
		MetaPublisher:     m.Publisher,
		MetaDatePublished: m.DatePublished,
		MetaPage:          m.Page,
	}
}

// EntryMetadataFromMap reads metadata back from a store map.
// Missing keys become empty strings.
func EntryMetadataFromMap(m map[string]string) EntryMetadata {
	return EntryMetadata{
		UniqueID:      m[MetaUniqueID],
		Source:        m[MetaSource],
		Authors:       m[MetaAuthors],
		Publisher:     m[MetaPublisher],
		DatePublished: m[MetaDatePublished],
		Page:          m[MetaPage],
	}
}

// CorpusEntry is one persisted record in a vector collection.
type CorpusEntry struct {
	ID        string
	Embedding []float32
	Contents  string
	Metadata  EntryMetadata
}

// ResultRecord is one retrieved chunk with its metadata.
type ResultRecord struct {
	Contents      string  `json:"contents"`
	Source        string  `json:"source"`
	Authors       string  `json:"authors"`
	Publisher     string  `json:"publisher"`
	DatePublished string  `json:"date_published"`
	Page          string  `json:"page"`
	UniqueID      string  `json:"unique_id"`
	Distance      float64 `json:"distance"`
}

// NewResultRecord pairs returned contents with their metadata.
func NewResultRecord(contents string, meta map[string]string) ResultRecord {
	m := EntryMetadataFromMap(meta)
	return ResultRecord{
		Contents:      contents,
		Source:        m.Source,
		Authors:       m.Authors,
		Publisher:     m.Publisher,
		DatePublished: m.DatePublished,
		Page:          m.Page,
		UniqueID:      m.UniqueID,
	}
}

// CitedResult is a retrieved record together with its formatted citation.
type CitedResult struct {
	Record   ResultRecord `json:"record"`
	Citation string       `json:"citation"`
}
