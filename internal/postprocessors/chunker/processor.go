// Package chunker splits page text into overlapping character windows.
package chunker

import (
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 800

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultSeparator splits on line breaks.
const DefaultSeparator = "\n"

// Ensure Processor implements the interface.
var _ driven.TextSplitter = (*Processor)(nil)

// Processor splits text on a separator and merges the pieces into
// windows of at most chunkSize characters. A single piece longer than
// chunkSize is kept whole.
type Processor struct {
	chunkSize int
	overlap   int
	separator string
	splitter  textsplitter.TextSplitter
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparator sets the string text is split on.
func WithSeparator(sep string) Option {
	return func(p *Processor) {
		if sep != "" {
			p.separator = sep
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		separator: DefaultSeparator,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	p.splitter = textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(p.chunkSize),
		textsplitter.WithChunkOverlap(p.overlap),
		textsplitter.WithSeparators([]string{p.separator}),
	)
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Split returns the windows of text in order. Text that cannot be
// split comes back as a single window.
func (p *Processor) Split(text string) []string {
	if text == "" {
		return nil
	}
	parts, err := p.splitter.SplitText(text)
	if err != nil || len(parts) == 0 {
		return []string{text}
	}
	return parts
}
