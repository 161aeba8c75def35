package c64

import (
	"bytes"
	"errors"
	"strings"

	"github.com/paich64/retropic/dither"
	"github.com/paich64/retropic/raster"
	"github.com/paich64/retropic/rgb"
)

// Sampling selects which pixels of a cell are considered when picking its
// two colors.
type Sampling int

const (
	// SampleAll considers all 64 pixels.
	SampleAll Sampling = iota
	// SampleOuter ignores the inner 3 by 3 block.
	SampleOuter
	// SampleChecker considers every other pixel in a checkerboard.
	SampleChecker
)

var errUnknownSampling = errors.New("c64: unknown sampling")

var samplingNames = []string{"all", "outer", "checker"}

func (s Sampling) String() string {
	if s >= 0 && int(s) < len(samplingNames) {
		return samplingNames[s]
	}
	return "unknown"
}

// ParseSampling returns the Sampling named by s.
func ParseSampling(s string) (Sampling, error) {
	for i, name := range samplingNames {
		if strings.EqualFold(s, name) {
			return Sampling(i), nil
		}
	}
	return 0, errUnknownSampling
}

func (s Sampling) skip(x, y int) bool {
	switch s {
	case SampleOuter:
		return x > 2 && x < 6 && y > 2 && y < 6
	case SampleChecker:
		return (x+y)%2 == 0
	}
	return false
}

// Hires is a two color per cell bitmap. It implements the
// encoding.BinaryMarshaler interface.
type Hires struct {
	Bitmap [bitmapBytes]byte
	// Screen holds the foreground index in the upper nibble and the
	// background index in the lower nibble of each cell.
	Screen  [numCells]byte
	Palette rgb.Palette

	rendered *raster.Image
}

// Rendered returns the image as it would be displayed.
func (h *Hires) Rendered() *raster.Image {
	return h.rendered
}

// Colors returns the palette the screen indexes.
func (h *Hires) Colors() rgb.Palette {
	return h.Palette
}

// MarshalBinary returns the bitmap followed by the screen.
func (h *Hires) MarshalBinary() ([]byte, error) {
	b := new(bytes.Buffer)
	b.Write(h.Bitmap[:])
	b.Write(h.Screen[:])
	return b.Bytes(), nil
}

// EncodeHires encodes m as a hires bitmap. The brightest and darkest
// sampled pixels of each cell decide its foreground and background. A nil
// kernel disables dithering, otherwise residuals never leave the cell.
func EncodeHires(m *raster.Image, p rgb.Palette, metric rgb.Metric, k *dither.Kernel, s Sampling) (*Hires, error) {
	if err := check(m, p); err != nil {
		return nil, err
	}

	h := &Hires{
		Palette:  p,
		rendered: raster.NewImage(Width, Height),
	}
	work := dither.NewBuffer(m)

	for i := 0; i < numCells; i++ {
		r := cell(i, cellWidth)

		f, n := 0, 0
		brightest, darkest := -1.0, 256.0
		for y := 0; y < cellHeight; y++ {
			for x := 0; x < cellWidth; x++ {
				if s.skip(x, y) {
					continue
				}
				c := m.RGBAt(r.Min.X+x, r.Min.Y+y)
				l := rgb.Luma(c)
				if l > brightest {
					brightest, f = l, p.Nearest(c, metric)
				}
				if l < darkest {
					darkest, n = l, p.Nearest(c, metric)
				}
			}
		}

		// Same color twice, fall back to black
		if f == n {
			n = 0
		}
		h.Screen[i] = byte(f<<4 | n)

		for y := r.Min.Y; y < r.Max.Y; y++ {
			var row byte
			for x := r.Min.X; x < r.Max.X; x++ {
				want := work.At(x, y)

				c := p[n]
				if metric.Distance(want, p[f]) < metric.Distance(want, p[n]) {
					c = p[f]
					row |= 0x80 >> uint(x-r.Min.X)
				}
				h.rendered.Set(x, y, c)

				if k != nil {
					work.Diffuse(k, r, x, y, dither.Residual(want, c))
				}
			}
			h.Bitmap[i*cellHeight+y-r.Min.Y] = row
		}
	}

	return h, nil
}
