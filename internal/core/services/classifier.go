package services

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// DocumentClassifier decides whether a PDF has a usable text layer.
type DocumentClassifier struct {
	extractor driven.TextExtractor
	log       *logger.Logger
}

// NewDocumentClassifier creates a classifier backed by the structured extractor.
func NewDocumentClassifier(extractor driven.TextExtractor, log *logger.Logger) *DocumentClassifier {
	if log == nil {
		log = logger.Discard()
	}
	return &DocumentClassifier{extractor: extractor, log: log.With("classifier")}
}

// Classify probes the document once and caches the result on it.
// Any probe failure routes the document to the OCR path.
func (c *DocumentClassifier) Classify(ctx context.Context, doc *domain.Document) domain.Readability {
	if doc.Readability != domain.ReadabilityUnknown {
		return doc.Readability
	}

	if err := c.extractor.Probe(ctx, doc.Path); err != nil {
		c.log.Debug("%s is not machine-readable: %v", doc.Name(), err)
		doc.Readability = domain.ReadabilityUnstructured
	} else {
		doc.Readability = domain.ReadabilityStructured
	}

	c.log.Info("%s classified as %s", doc.Name(), doc.Readability)
	return doc.Readability
}
