// Package sqlite provides the default on-disk vector store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Collections live in one database file:
//
//   - collections: name and the embedding dimension locked by the first upsert
//   - corpus_entries: chunk contents, citation metadata and the embedding blob
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Search
//
// Queries scan the collection and rank by cosine distance. A personal library
// holds thousands of chunks, not millions, so no ANN index is kept.
//
// # Data Location
//
// The database is stored at <library root>/db/folio.db.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
