package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or backend type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmptyEmbedding indicates the embedding service returned no vector.
	ErrEmptyEmbedding = errors.New("empty embedding")

	// ErrDimensionMismatch indicates a vector does not match the collection's dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCollectionName indicates an empty or malformed collection name.
	ErrCollectionName = errors.New("invalid collection name")

	// ErrStoreClosed indicates the vector store has been closed.
	ErrStoreClosed = errors.New("vector store closed")

	// ErrToolNotFound indicates a required external program (pdftoppm, tesseract) is missing.
	ErrToolNotFound = errors.New("external tool not found")

	// Ingestion Errors.

	// ErrArchiveCollision indicates the archive destination already exists.
	// The document stays in the intake directory.
	ErrArchiveCollision = errors.New("archive destination already exists")

	// ErrIngestionInProgress indicates the document is already being ingested.
	ErrIngestionInProgress = errors.New("ingestion already in progress")
)
