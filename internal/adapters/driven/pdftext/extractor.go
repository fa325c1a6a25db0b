// Package pdftext reads the text layer of machine-readable PDFs.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// ErrNoTextLayer is returned by Probe for documents whose first page has no
// extractable text, such as scans that only paint images.
var ErrNoTextLayer = errors.New("no text layer")

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor implements driven.TextExtractor with a pure Go PDF parser.
type Extractor struct {
	log *logger.Logger
}

// New creates a new extractor.
func New(log *logger.Logger) *Extractor {
	if log == nil {
		log = logger.Discard()
	}
	return &Extractor{log: log.With("pdftext")}
}

// Probe opens the document and reads the text of its first page. A page
// that parses but yields no text fails with ErrNoTextLayer.
func (e *Extractor) Probe(_ context.Context, path string) (err error) {
	defer recoverInto(&err, path)

	f, r, err := pdf.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	if r.NumPage() < 1 {
		return fmt.Errorf("%s has no pages", filepath.Base(path))
	}
	page := r.Page(1)
	if page.V.IsNull() {
		return fmt.Errorf("%s: first page is unreadable", filepath.Base(path))
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return fmt.Errorf("%s: read first page: %w", filepath.Base(path), err)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%s: %w", filepath.Base(path), ErrNoTextLayer)
	}
	return nil
}

// ExtractPages returns one record per physical page in page order.
// Pages whose text cannot be decoded come back empty.
func (e *Extractor) ExtractPages(ctx context.Context, path string) (pages []domain.PageText, err error) {
	defer recoverInto(&err, path)

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	n := r.NumPage()
	pages = make([]domain.PageText, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages[i-1] = domain.PageText{PageNumber: i, Text: e.pageText(r, i, path)}
	}
	return pages, nil
}

// pageText extracts one page, isolating parser panics to that page.
func (e *Extractor) pageText(r *pdf.Reader, i int, path string) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			e.log.Warn("page %d of %s: parser panic: %v", i, filepath.Base(path), rec)
			text = ""
		}
	}()

	page := r.Page(i)
	if page.V.IsNull() {
		e.log.Debug("page %d of %s is empty", i, filepath.Base(path))
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		e.log.Warn("page %d of %s: %v", i, filepath.Base(path), err)
		return ""
	}
	return text
}

// recoverInto turns a parser panic on malformed input into an error.
func recoverInto(err *error, path string) {
	if rec := recover(); rec != nil {
		*err = fmt.Errorf("parse %s: %v", filepath.Base(path), rec)
	}
}
