package services

import (
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// ChunkAssembler turns per-page text into chunks.
type ChunkAssembler struct {
	splitter driven.TextSplitter
}

// NewChunkAssembler creates an assembler. The splitter is optional:
// when nil, every page becomes exactly one chunk.
func NewChunkAssembler(splitter driven.TextSplitter) *ChunkAssembler {
	return &ChunkAssembler{splitter: splitter}
}

// Assemble returns chunks in page order. Sub-chunks produced by the
// splitter inherit their page's number. Empty pages still yield one chunk.
func (a *ChunkAssembler) Assemble(pages []domain.PageText) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(pages))
	for _, page := range pages {
		if a.splitter == nil {
			chunks = append(chunks, domain.Chunk{PageNumber: page.PageNumber, Contents: page.Text})
			continue
		}

		parts := a.splitter.Split(page.Text)
		if len(parts) == 0 {
			parts = []string{page.Text}
		}
		for _, part := range parts {
			chunks = append(chunks, domain.Chunk{PageNumber: page.PageNumber, Contents: part})
		}
	}
	return chunks
}
