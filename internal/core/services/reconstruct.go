package services

import (
	"context"
	"fmt"
	"image"
	_ "image/png" // page images are rendered as PNG
	"os"
	"runtime"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// UnstructuredExtractor recovers page text from scanned PDFs by
// rasterizing pages, segmenting text regions and OCR'ing each region.
type UnstructuredExtractor struct {
	rasterizer driven.Rasterizer
	segmenter  driven.RegionSegmenter
	ocr        driven.OCREngine
	pool       *ants.Pool
	log        *logger.Logger

	order      domain.ReadingOrder
	scratchDir string
	keepImages bool
	workers    int
}

// UnstructuredOption configures an UnstructuredExtractor.
type UnstructuredOption func(*UnstructuredExtractor)

// WithReadingOrder sets how region texts are ordered within a page.
// The default, ReadingOrderPosition, sorts regions by their top edge and
// then their left edge. ReadingOrderReverse restores the older behaviour of
// joining regions in reverse discovery order; pick it
// (extraction.reading_order = "reverse") when page text must match
// libraries ingested that way. Unknown orders are ignored.
func WithReadingOrder(order domain.ReadingOrder) UnstructuredOption {
	return func(e *UnstructuredExtractor) {
		if order.IsValid() {
			e.order = order
		}
	}
}

// WithScratchDir sets where page images are rendered.
// Defaults to the system temp directory.
func WithScratchDir(dir string) UnstructuredOption {
	return func(e *UnstructuredExtractor) {
		e.scratchDir = dir
	}
}

// WithKeepImages leaves rendered page images on disk.
func WithKeepImages(keep bool) UnstructuredOption {
	return func(e *UnstructuredExtractor) {
		e.keepImages = keep
	}
}

// WithOCRWorkers bounds concurrent OCR calls. Values below 1 keep the default.
func WithOCRWorkers(n int) UnstructuredOption {
	return func(e *UnstructuredExtractor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewUnstructuredExtractor creates the OCR extraction path.
// Call Release when done to stop the worker pool.
func NewUnstructuredExtractor(
	rasterizer driven.Rasterizer,
	segmenter driven.RegionSegmenter,
	ocr driven.OCREngine,
	log *logger.Logger,
	opts ...UnstructuredOption,
) (*UnstructuredExtractor, error) {
	if log == nil {
		log = logger.Discard()
	}

	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}

	e := &UnstructuredExtractor{
		rasterizer: rasterizer,
		segmenter:  segmenter,
		ocr:        ocr,
		log:        log.With("ocr-path"),
		order:      domain.ReadingOrderPosition,
		workers:    workers,
	}
	for _, opt := range opts {
		opt(e)
	}

	pool, err := ants.NewPool(e.workers)
	if err != nil {
		return nil, fmt.Errorf("create ocr pool: %w", err)
	}
	e.pool = pool

	return e, nil
}

// Release stops the worker pool.
func (e *UnstructuredExtractor) Release() {
	e.pool.Release()
}

// ExtractPages rasterizes the document and reconstructs every page.
// A rasterization failure yields no pages; a page that cannot be decoded
// yields empty text. Neither aborts the caller.
func (e *UnstructuredExtractor) ExtractPages(ctx context.Context, doc domain.Document) []domain.PageText {
	dir, err := os.MkdirTemp(e.scratchDir, doc.Stem()+"-")
	if err != nil {
		e.log.Error("create scratch dir for %s: %v", doc.Name(), err)
		return nil
	}
	if !e.keepImages {
		defer os.RemoveAll(dir)
	}

	images, err := e.rasterizer.Rasterize(ctx, doc.Path, dir)
	if err != nil {
		e.log.Error("rasterize %s: %v", doc.Name(), err)
		return nil
	}
	e.log.Debug("%s rendered to %d page images", doc.Name(), len(images))

	pages := make([]domain.PageText, len(images))
	for i, path := range images {
		pages[i] = domain.PageText{PageNumber: i + 1}

		img, err := decodeImage(path)
		if err != nil {
			e.log.Warn("decode page %d of %s: %v", i+1, doc.Name(), err)
			continue
		}
		pages[i].Text = e.ReconstructPage(ctx, img)
	}
	return pages
}

// ReconstructPage segments one page image, OCRs every region and joins the
// region texts with newlines in the configured reading order.
func (e *UnstructuredExtractor) ReconstructPage(ctx context.Context, page image.Image) string {
	regions := e.segmenter.Segment(page)
	if e.order == domain.ReadingOrderPosition {
		sort.SliceStable(regions, func(i, j int) bool {
			if regions[i].Y != regions[j].Y {
				return regions[i].Y < regions[j].Y
			}
			return regions[i].X < regions[j].X
		})
	}

	texts := make([]string, len(regions))
	var wg sync.WaitGroup
	for i, region := range regions {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			texts[i] = e.ocr.Read(ctx, page, region)
		}
		if err := e.pool.Submit(task); err != nil {
			// Pool closed or overloaded: read inline so no region is lost.
			task()
		}
	}
	wg.Wait()

	if e.order == domain.ReadingOrderReverse {
		slices.Reverse(texts)
	}
	return strings.Join(texts, "\n")
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}
