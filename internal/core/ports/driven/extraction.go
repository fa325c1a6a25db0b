package driven

import (
	"context"
	"image"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// TextExtractor reads PDFs that carry a text layer.
type TextExtractor interface {
	// Probe opens the document and reads its first page.
	// A nil error means the document is machine-readable.
	Probe(ctx context.Context, path string) error

	// ExtractPages returns one record per physical page, in page order.
	// Pages that fail to extract are returned with empty text.
	ExtractPages(ctx context.Context, path string) ([]domain.PageText, error)
}

// Rasterizer renders every page of a PDF to an image file.
type Rasterizer interface {
	// Rasterize writes page images into dir and returns their paths in page order.
	Rasterize(ctx context.Context, path, dir string) ([]string, error)
}

// RegionSegmenter finds candidate text regions on a rasterized page.
type RegionSegmenter interface {
	// Segment returns region boxes in discovery order.
	Segment(page image.Image) []domain.PageRegion
}

// OCREngine reads the text inside one region of a page image.
type OCREngine interface {
	// Read never fails: engine errors and empty output yield "".
	Read(ctx context.Context, page image.Image, region domain.PageRegion) string
}

// TextSplitter divides long text into overlapping windows.
type TextSplitter interface {
	Split(text string) []string
}
