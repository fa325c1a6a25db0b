// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TextExtractor: Probes and reads PDFs that carry a text layer
//   - Rasterizer: Renders PDF pages to images for OCR
//   - RegionSegmenter: Finds text regions on a page image
//   - OCREngine: Reads the text inside one region
//   - EmbeddingService: Maps text to a fixed-length vector
//   - VectorStore: Persists corpus entries in named collections
//   - Archiver: Lists the intake directory and moves ingested files
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - TextSplitter: Without it, each page becomes exactly one chunk.
//   - StatusReporter: Without it, ingestion progress is not published.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
