/*
Package palette derives the global palette an image is encoded against.

A Generator either trains a palette from the image (SOM, MedianCut) or
returns a predetermined one (Uniform, Fixed). Callers must treat the
result as an opaque indexed set; entries are in no particular order and
may repeat.
*/
package palette

import (
	"errors"
	"image/color"
	"math"
	"math/rand"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/paich64/retropic/raster"
	"github.com/paich64/retropic/rgb"
)

var (
	errEmpty   = errors.New("palette: image has no pixels")
	errBadGrid = errors.New("palette: invalid grid size")
)

// Generator produces the palette for an image.
type Generator interface {
	Generate(m *raster.Image) (rgb.Palette, error)
}

// Fixed is a predetermined hardware palette.
type Fixed rgb.Palette

// Generate returns a copy of the palette, m is ignored.
func (f Fixed) Generate(m *raster.Image) (rgb.Palette, error) {
	return append(rgb.Palette(nil), f...), nil
}

// Uniform quantizes each channel into an equal number of steps. The
// palette has R*G*B entries ordered red, green then blue with blue
// changing fastest.
type Uniform struct {
	R, G, B int
}

func levels(n int) []uint8 {
	l := make([]uint8, n)
	for i := range l {
		if n > 1 {
			l[i] = uint8(i * 255 / (n - 1))
		}
	}
	return l
}

// Generate returns the uniform palette, m is ignored.
func (u Uniform) Generate(m *raster.Image) (rgb.Palette, error) {
	if u.R < 1 || u.G < 1 || u.B < 1 {
		return nil, errBadGrid
	}
	p := make(rgb.Palette, 0, u.R*u.G*u.B)
	for _, r := range levels(u.R) {
		for _, g := range levels(u.G) {
			for _, b := range levels(u.B) {
				p = append(p, rgb.Color{R: r, G: g, B: b})
			}
		}
	}
	return p, nil
}

// MedianCut builds a palette of Size colors by median cut. Images with
// fewer colors are padded with black.
type MedianCut struct {
	Size int
}

// Generate implements the Generator interface.
func (mc MedianCut) Generate(m *raster.Image) (rgb.Palette, error) {
	if mc.Size < 1 {
		return nil, errBadGrid
	}
	if len(m.Pix) == 0 {
		return nil, errEmpty
	}

	q := quantize.MedianCutQuantizer{}
	cp := q.Quantize(make(color.Palette, 0, mc.Size), m)

	p := make(rgb.Palette, mc.Size)
	for i := 0; i < len(cp) && i < mc.Size; i++ {
		p[i] = rgb.Model.Convert(cp[i]).(rgb.Color)
	}
	return p, nil
}

// SOM trains a Width by Height self-organizing map of colors.
type SOM struct {
	Width, Height int
	// Epochs is the fixed number of training rounds.
	Epochs int
	// Samples is the number of pixels drawn per epoch, zero means the
	// number of pixels in the image.
	Samples int
	Seed    int64
	Metric  rgb.Metric
}

// Generate implements the Generator interface.
func (s SOM) Generate(m *raster.Image) (rgb.Palette, error) {
	if s.Width < 1 || s.Height < 1 {
		return nil, errBadGrid
	}
	if len(m.Pix) == 0 {
		return nil, errEmpty
	}

	samples := make([]rgb.Color, 0, m.Width*m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			samples = append(samples, m.RGBAt(x, y))
		}
	}
	return Train(samples, s.Width, s.Height, s.Epochs, s.Samples, s.Seed, s.Metric), nil
}

const initialRate = 0.25

// Train runs the competitive learning quantizer over samples. Nodes are
// seeded with randomly picked samples and, for each of epochs rounds,
// perEpoch samples pull their best matching node and its grid neighbors
// toward them. Learning rate and neighborhood radius shrink linearly.
// Identical arguments always give an identical palette.
func Train(samples []rgb.Color, width, height, epochs, perEpoch int, seed int64, metric rgb.Metric) rgb.Palette {
	if len(samples) == 0 || width < 1 || height < 1 {
		return nil
	}
	if perEpoch <= 0 {
		perEpoch = len(samples)
	}

	r := rand.New(rand.NewSource(seed))

	nodes := make([][3]float64, width*height)
	for i := range nodes {
		nodes[i] = samples[r.Intn(len(samples))].Float()
	}

	radius0 := float64(width)
	if height > width {
		radius0 = float64(height)
	}
	radius0 /= 2

	for e := 0; e < epochs; e++ {
		decay := 1 - float64(e)/float64(epochs)
		rate := initialRate * decay
		radius := radius0 * decay
		r2 := radius * radius

		for n := 0; n < perEpoch; n++ {
			sample := samples[r.Intn(len(samples))].Float()

			bmu, best := 0, math.MaxFloat64
			for i, node := range nodes {
				if d := metric.DistanceF(sample, node); d < best {
					bmu, best = i, d
				}
			}
			bx, by := bmu%width, bmu/width

			for i := range nodes {
				dx, dy := float64(i%width-bx), float64(i/width-by)
				d2 := dx*dx + dy*dy
				if d2 > r2 && i != bmu {
					continue
				}
				influence := 1.0
				if d2 > 0 {
					influence = math.Exp(-d2 / (2 * r2))
				}
				for c := 0; c < 3; c++ {
					nodes[i][c] += rate * influence * (sample[c] - nodes[i][c])
				}
			}
		}
	}

	p := make(rgb.Palette, len(nodes))
	for i, node := range nodes {
		p[i] = rgb.Color{R: round(node[0]), G: round(node[1]), B: round(node[2])}
	}
	return p
}

func round(v float64) uint8 {
	v = math.Round(v)
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}
