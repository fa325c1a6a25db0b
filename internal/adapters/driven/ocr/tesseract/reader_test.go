package tesseract

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// mockRunner is a test double for command.Runner that decodes the crop it is given.
type mockRunner struct {
	output []byte
	err    error
	args   []string
	crop   image.Image
}

func (m *mockRunner) Run(_ context.Context, _ string, args ...string) ([]byte, []byte, error) {
	m.args = args
	if f, err := os.Open(args[0]); err == nil {
		m.crop, _ = png.Decode(f)
		f.Close()
	}
	return m.output, nil, m.err
}

func grayPage(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func TestRead_RunsTesseractOnCrop(t *testing.T) {
	runner := &mockRunner{output: []byte("Introduction\n\f")}
	r := New(runner, "", nil, WithTempDir(t.TempDir()))

	got := r.Read(context.Background(), grayPage(100, 100, 200), domain.PageRegion{X: 10, Y: 20, Width: 30, Height: 40})

	assert.Equal(t, "Introduction\n", got)
	require.Len(t, runner.args, 4)
	assert.Equal(t, []string{"stdout", "--psm", "6"}, runner.args[1:])
	require.NotNil(t, runner.crop)
	assert.Equal(t, 30, runner.crop.Bounds().Dx())
	assert.Equal(t, 40, runner.crop.Bounds().Dy())

	// Temp crop is removed afterwards
	_, err := os.Stat(runner.args[0])
	assert.True(t, os.IsNotExist(err))
}

func TestRead_ClampsToPage(t *testing.T) {
	runner := &mockRunner{output: []byte("x")}
	r := New(runner, "", nil, WithTempDir(t.TempDir()))

	// Region boxes extend to a fixed right edge that may exceed the page.
	r.Read(context.Background(), grayPage(100, 50, 0), domain.PageRegion{X: 60, Y: 10, Width: 2740, Height: 100})

	require.NotNil(t, runner.crop)
	assert.Equal(t, 40, runner.crop.Bounds().Dx())
	assert.Equal(t, 40, runner.crop.Bounds().Dy())
}

func TestRead_FailuresYieldEmpty(t *testing.T) {
	page := grayPage(10, 10, 0)

	tests := []struct {
		name   string
		runner *mockRunner
		region domain.PageRegion
	}{
		{"engine error", &mockRunner{err: errors.New("exit status 1")}, domain.PageRegion{Width: 5, Height: 5}},
		{"empty region", &mockRunner{output: []byte("x")}, domain.PageRegion{Width: 0, Height: 5}},
		{"outside page", &mockRunner{output: []byte("x")}, domain.PageRegion{X: 50, Y: 50, Width: 5, Height: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.runner, "", nil, WithTempDir(t.TempDir()))
			assert.Equal(t, "", r.Read(context.Background(), page, tt.region))
		})
	}
}

func TestRead_CustomPSM(t *testing.T) {
	runner := &mockRunner{}
	New(runner, "/usr/local/bin/tesseract", nil, WithPSM(4), WithTempDir(t.TempDir())).
		Read(context.Background(), grayPage(4, 4, 0), domain.PageRegion{Width: 2, Height: 2})

	assert.Equal(t, "4", runner.args[3])
}

func TestBinarise(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 120, G: 121, B: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 255})
	img.SetNRGBA(2, 0, color.NRGBA{R: 200, G: 200, B: 200, A: 255})

	out := Binarise(img, image.Rect(0, 0, 3, 1), DefaultThreshold)

	assert.Equal(t, color.NRGBA{R: 0, G: 255, B: 255, A: 255}, out.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 0, G: 0, B: 0, A: 255}, out.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, out.NRGBAAt(2, 0))
}
