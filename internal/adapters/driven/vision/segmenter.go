// Package vision finds text regions on rasterized pages.
//
// The pipeline is grayscale, 9x9 Gaussian blur, inverted adaptive Gaussian
// threshold (block 11, C 30), six 9x9 rectangular dilations and the bounding
// boxes of the external contours of what remains. Region boxes extend from
// their left edge to a fixed page width.
package vision

import (
	"image"
	"math"
	"slices"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Segmenter implements the interface.
var _ driven.RegionSegmenter = (*Segmenter)(nil)

// Params tunes the segmentation pipeline.
type Params struct {
	BlurSize   int     // Gaussian blur kernel size (odd)
	BlurSigma  float64 // 0 derives sigma from BlurSize
	BlockSize  int     // adaptive threshold neighbourhood (odd)
	C          int     // subtracted from the local mean
	KernelSize int     // dilation kernel side
	Iterations int     // dilation passes
	PageWidth  int     // right edge every region extends to
}

// DefaultParams returns the parameters tuned for 400 DPI letter pages.
func DefaultParams() Params {
	return Params{
		BlurSize:   9,
		BlockSize:  11,
		C:          30,
		KernelSize: 9,
		Iterations: 6,
		PageWidth:  2800,
	}
}

// Segmenter implements driven.RegionSegmenter in pure Go.
type Segmenter struct {
	params Params
}

// New creates a segmenter. A pageWidth below 1 keeps the default.
func New(pageWidth int) *Segmenter {
	p := DefaultParams()
	if pageWidth > 0 {
		p.PageWidth = pageWidth
	}
	return &Segmenter{params: p}
}

// NewWithParams creates a segmenter with explicit parameters.
func NewWithParams(p Params) *Segmenter {
	return &Segmenter{params: p}
}

// Segment returns region boxes in discovery order: lower regions usually come first.
func (s *Segmenter) Segment(page image.Image) []domain.PageRegion {
	g := toGray(page)
	if g.w == 0 || g.h == 0 {
		return nil
	}

	p := s.params
	blurred := gaussianBlur(g, p.BlurSize, p.BlurSigma, reflect101)
	mask := adaptiveThresholdInv(blurred, p.BlockSize, p.C)
	side := (p.KernelSize-1)*p.Iterations + 1
	mask = dilate(mask, side)

	boxes := components(mask)
	slices.Reverse(boxes)

	regions := make([]domain.PageRegion, len(boxes))
	for i, b := range boxes {
		regions[i] = domain.PageRegion{
			X:      b.Min.X,
			Y:      b.Min.Y,
			Width:  p.PageWidth - b.Min.X,
			Height: b.Dy(),
			Order:  i,
		}
	}
	return regions
}

// plane is an 8-bit single channel image.
type plane struct {
	w, h int
	pix  []uint8
}

// toGray converts with the BT.601 fixed-point weights used by common vision libraries.
func toGray(img image.Image) plane {
	b := img.Bounds()
	out := plane{w: b.Dx(), h: b.Dy(), pix: make([]uint8, b.Dx()*b.Dy())}

	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < out.h; y++ {
			copy(out.pix[y*out.w:(y+1)*out.w], g.Pix[(y+b.Min.Y-g.Rect.Min.Y)*g.Stride+(b.Min.X-g.Rect.Min.X):])
		}
		return out
	}

	for y := 0; y < out.h; y++ {
		for x := 0; x < out.w; x++ {
			r, gg, bb, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			v := (int(r>>8)*4899 + int(gg>>8)*9617 + int(bb>>8)*1868 + 8192) >> 14
			out.pix[y*out.w+x] = uint8(v)
		}
	}
	return out
}

func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*n - 2 - i
		}
	}
	return i
}

func replicate(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// gaussianKernel returns normalised weights; sigma <= 0 is derived from size.
func gaussianKernel(size int, sigma float64) []float64 {
	if sigma <= 0 {
		sigma = 0.3*(float64(size-1)*0.5-1) + 0.8
	}
	k := make([]float64, size)
	half := size / 2
	var sum float64
	for i := range k {
		d := float64(i - half)
		k[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// gaussianBlur applies a separable Gaussian with the given border rule.
func gaussianBlur(src plane, size int, sigma float64, border func(int, int) int) plane {
	k := gaussianKernel(size, sigma)
	half := size / 2
	w, h := src.w, src.h

	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := src.pix[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			var acc float64
			for i, kv := range k {
				acc += kv * float64(row[border(x+i-half, w)])
			}
			tmp[y*w+x] = acc
		}
	}

	out := plane{w: w, h: h, pix: make([]uint8, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for i, kv := range k {
				acc += kv * tmp[border(y+i-half, h)*w+x]
			}
			out.pix[y*w+x] = saturate(acc)
		}
	}
	return out
}

func saturate(v float64) uint8 {
	r := math.RoundToEven(v)
	switch {
	case r < 0:
		return 0
	case r > 255:
		return 255
	default:
		return uint8(r)
	}
}

// adaptiveThresholdInv marks a pixel as foreground when it is at least c
// darker than its Gaussian-weighted neighbourhood mean.
func adaptiveThresholdInv(src plane, block, c int) binary {
	mean := gaussianBlur(src, block, 0, replicate)
	mask := binary{w: src.w, h: src.h, on: make([]bool, len(src.pix))}
	for i, v := range src.pix {
		mask.on[i] = int(v)-int(mean.pix[i]) <= -c
	}
	return mask
}
