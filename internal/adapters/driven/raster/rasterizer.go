// Package raster renders PDF pages to PNG files with poppler's pdftoppm.
package raster

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/folio/internal/adapters/driven/command"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure Rasterizer implements the interface.
var _ driven.Rasterizer = (*Rasterizer)(nil)

// DefaultDPI matches the resolution the region segmenter is tuned for.
const DefaultDPI = 400

const pagePrefix = "page"

// Rasterizer shells out to pdftoppm.
type Rasterizer struct {
	runner command.Runner
	bin    string
	dpi    int
	log    *logger.Logger
}

// New creates a rasterizer. An empty bin uses "pdftoppm"; dpi below 1 uses DefaultDPI.
func New(runner command.Runner, bin string, dpi int, log *logger.Logger) *Rasterizer {
	if bin == "" {
		bin = "pdftoppm"
	}
	if dpi < 1 {
		dpi = DefaultDPI
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Rasterizer{runner: runner, bin: bin, dpi: dpi, log: log.With("raster")}
}

// CheckAvailable reports whether the pdftoppm binary can be found.
func (r *Rasterizer) CheckAvailable() error {
	return command.Require(r.bin)
}

// Rasterize writes one PNG per page into dir and returns the paths in page order.
func (r *Rasterizer) Rasterize(ctx context.Context, path, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	prefix := filepath.Join(dir, pagePrefix)
	// pdftoppm -r 400 -png <in.pdf> <dir/page>
	_, errb, err := r.runner.Run(ctx, r.bin, "-r", strconv.Itoa(r.dpi), "-png", path, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w: %s", err, strings.TrimSpace(string(errb)))
	}

	// pdftoppm pads page numbers to the width of the page count
	// (page-01.png ... page-12.png); sort numerically to be safe.
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no images for %s", filepath.Base(path))
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return pageNumber(matches[i]) < pageNumber(matches[j])
	})

	r.log.Debug("rendered %d pages of %s at %d dpi", len(matches), filepath.Base(path), r.dpi)
	return matches, nil
}

// pageNumber parses N from ".../page-N.png". Unparseable names sort last.
func pageNumber(path string) int {
	name := strings.TrimSuffix(filepath.Base(path), ".png")
	i := strings.LastIndex(name, "-")
	if i < 0 {
		return int(^uint(0) >> 1)
	}
	n, err := strconv.Atoi(name[i+1:])
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}
