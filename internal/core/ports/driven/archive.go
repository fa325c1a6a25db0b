package driven

import "context"

// Archiver manages the intake and archive directories.
type Archiver interface {
	// List returns the PDF paths currently waiting in the intake directory.
	List(ctx context.Context) ([]string, error)

	// Archive moves the file at path into the archive directory under name.
	// Returns the destination path. Fails with domain.ErrArchiveCollision
	// when the destination exists; the source is left untouched on failure.
	Archive(ctx context.Context, path, name string) (string, error)
}
