// Package archive moves ingested PDFs from the intake directory to the archive.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure Archiver implements the interface.
var _ driven.Archiver = (*Archiver)(nil)

// Archiver works on two directories of the local filesystem.
type Archiver struct {
	intake  string
	archive string
	log     *logger.Logger
}

// New creates an archiver for the given intake and archive directories.
func New(intakeDir, archiveDir string, log *logger.Logger) *Archiver {
	if log == nil {
		log = logger.Discard()
	}
	return &Archiver{intake: intakeDir, archive: archiveDir, log: log.With("archive")}
}

// IsPDF reports whether the file name has a .pdf extension, in any case.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// List returns the PDFs in the intake directory sorted by name.
// Subdirectories and hidden files are ignored.
func (a *Archiver) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(a.intake)
	if err != nil {
		return nil, fmt.Errorf("reading intake directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !IsPDF(name) {
			continue
		}
		paths = append(paths, filepath.Join(a.intake, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// Archive moves path to <archive>/<name>. Fails with domain.ErrArchiveCollision
// when the destination exists; the source is untouched on any failure.
func (a *Archiver) Archive(_ context.Context, path, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: archive name %q", domain.ErrInvalidInput, name)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("archive %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(a.archive, 0o755); err != nil {
		return "", fmt.Errorf("creating archive directory: %w", err)
	}

	dest := filepath.Join(a.archive, name)
	if _, err := os.Lstat(dest); err == nil {
		return "", fmt.Errorf("archive %s as %s: %w", filepath.Base(path), name, domain.ErrArchiveCollision)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("checking archive destination: %w", err)
	}

	if err := os.Rename(path, dest); err != nil {
		// Cross-device moves fall back to copy and delete
		a.log.Debug("rename %s failed (%v), copying", filepath.Base(path), err)
		if err := copyFile(path, dest); err != nil {
			return "", err
		}
		if err := os.Remove(path); err != nil {
			a.log.Warn("archived %s but could not remove it from intake: %v", filepath.Base(path), err)
		}
	}

	a.log.Info("archived %s -> %s", filepath.Base(path), dest)
	return dest, nil
}

// copyFile copies src to a new file dst, removing dst on failure.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filepath.Base(src), err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("copy to %s: %w", filepath.Base(dst), domain.ErrArchiveCollision)
		}
		return fmt.Errorf("creating %s: %w", filepath.Base(dst), err)
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(dst)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying %s: %w", filepath.Base(src), err)
	}
	return nil
}
