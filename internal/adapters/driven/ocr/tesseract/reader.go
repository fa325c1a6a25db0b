// Package tesseract reads text out of page regions with the tesseract CLI.
package tesseract

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/folio/internal/adapters/driven/command"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure Reader implements the interface.
var _ driven.OCREngine = (*Reader)(nil)

const (
	// DefaultThreshold binarises each channel: values above it become white.
	DefaultThreshold = 120

	// DefaultPSM treats each region as a single uniform block of text.
	DefaultPSM = 6
)

// Reader OCRs one region at a time.
type Reader struct {
	runner    command.Runner
	bin       string
	psm       int
	threshold uint8
	tmpDir    string
	log       *logger.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithTempDir sets where region crops are written. Defaults to the system temp dir.
func WithTempDir(dir string) Option {
	return func(r *Reader) { r.tmpDir = dir }
}

// WithPSM sets tesseract's page segmentation mode.
func WithPSM(psm int) Option {
	return func(r *Reader) { r.psm = psm }
}

// New creates a reader. An empty bin uses "tesseract".
func New(runner command.Runner, bin string, log *logger.Logger, opts ...Option) *Reader {
	if bin == "" {
		bin = "tesseract"
	}
	if log == nil {
		log = logger.Discard()
	}
	r := &Reader{
		runner:    runner,
		bin:       bin,
		psm:       DefaultPSM,
		threshold: DefaultThreshold,
		log:       log.With("tesseract"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CheckAvailable reports whether the tesseract binary can be found.
func (r *Reader) CheckAvailable() error {
	return command.Require(r.bin)
}

// Read crops region from page, binarises it and runs tesseract on the crop.
// Any failure yields "".
func (r *Reader) Read(ctx context.Context, page image.Image, region domain.PageRegion) string {
	if region.Empty() {
		return ""
	}

	b := page.Bounds()
	rect := image.Rect(region.X, region.Y, region.X+region.Width, region.Y+region.Height).
		Add(b.Min).
		Intersect(b)
	if rect.Empty() {
		return ""
	}

	f, err := os.CreateTemp(r.tmpDir, "region-*.png")
	if err != nil {
		r.log.Warn("create region image: %v", err)
		return ""
	}
	defer os.Remove(f.Name())

	err = png.Encode(f, Binarise(page, rect, r.threshold))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		r.log.Warn("write region image: %v", err)
		return ""
	}

	// tesseract <file> stdout --psm 6
	out, _, err := r.runner.Run(ctx, r.bin, f.Name(), "stdout", "--psm", strconv.Itoa(r.psm))
	if err != nil {
		r.log.Warn("region (%d,%d %dx%d): %v", region.X, region.Y, region.Width, region.Height, err)
		return ""
	}

	// tesseract ends its output with a form feed page separator.
	return strings.TrimRight(string(out), "\f")
}

// Binarise copies rect out of img, setting each colour channel to 255 when
// it exceeds threshold and to 0 otherwise.
func Binarise(img image.Image, rect image.Rectangle, threshold uint8) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	level := func(v uint8) uint8 {
		if v > threshold {
			return 255
		}
		return 0
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.SetNRGBA(x-rect.Min.X, y-rect.Min.Y, color.NRGBA{
				R: level(c.R), G: level(c.G), B: level(c.B), A: 255,
			})
		}
	}
	return out
}
