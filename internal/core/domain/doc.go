// Package domain defines the core business entities for folio.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A PDF in the intake directory with its bibliographic metadata
//   - PageText: Extracted text of one physical page
//   - PageRegion: A text region found on a rasterized page
//   - Chunk: A page-scoped unit of text destined for embedding
//   - CorpusEntry: A persisted (id, vector, text, metadata) record
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
