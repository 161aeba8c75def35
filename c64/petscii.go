package c64

import (
	"bytes"
	"errors"
	"image"
	"math"

	"github.com/paich64/retropic/glyph"
	"github.com/paich64/retropic/raster"
	"github.com/paich64/retropic/rgb"
)

var errNoGlyphs = errors.New("c64: petscii needs a network and a charset")

// Petscii is a character screen. It implements the
// encoding.BinaryMarshaler interface.
type Petscii struct {
	// Screen holds the character code of each cell.
	Screen [numCells]byte
	// Nibbles holds the foreground index of each cell.
	Nibbles    [numCells]byte
	Background uint8
	Palette    rgb.Palette

	rendered *raster.Image
}

// Cell returns the character code, background and foreground index of
// cell i.
func (pt *Petscii) Cell(i int) (code, background, foreground uint8) {
	return pt.Screen[i], pt.Background, pt.Nibbles[i]
}

// Rendered returns the image as it would be displayed.
func (pt *Petscii) Rendered() *raster.Image {
	return pt.rendered
}

// Colors returns the palette the cells index.
func (pt *Petscii) Colors() rgb.Palette {
	return pt.Palette
}

// MarshalBinary returns the background index, the screen codes and the
// color nibbles.
func (pt *Petscii) MarshalBinary() ([]byte, error) {
	b := new(bytes.Buffer)
	b.WriteByte(pt.Background)
	b.Write(pt.Screen[:])
	b.Write(pt.Nibbles[:])
	return b.Bytes(), nil
}

// Background picks the screen background. Each pixel votes for its
// nearest palette entry with weight 255 minus its luma so dark colors
// dominate. The winner is only used when it holds more than half of its
// own weight over entry 0, otherwise entry 0 is used.
func Background(m *raster.Image, p rgb.Palette, metric rgb.Metric) int {
	occurrence := make([]float64, len(p))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := m.RGBAt(x, y)
			occurrence[p.Nearest(c, metric)] += 255 - rgb.Luma(c)
		}
	}

	k, count := 0, 0.0
	for i, o := range occurrence {
		if count < o {
			k, count = i, o
		}
	}

	if count > 0 && (count-occurrence[0])/count > 0.5 {
		return k
	}
	return 0
}

// Binarize sets a bit for each pixel of the 8 by 8 cell at r that is
// strictly closer to fg than to bg.
func Binarize(m *raster.Image, r image.Rectangle, fg, bg rgb.Color, metric rgb.Metric) [glyph.Inputs]float32 {
	var tile [glyph.Inputs]float32
	for y := 0; y < cellHeight; y++ {
		for x := 0; x < cellWidth; x++ {
			c := m.RGBAt(r.Min.X+x, r.Min.Y+y)
			if metric.Distance(c, fg) < metric.Distance(c, bg) {
				tile[y<<3+x] = 1
			}
		}
	}
	return tile
}

// EncodePetscii matches every cell of m against the charset. The cell
// foreground is the color whose luma differs most from the background,
// the pixels are split between the two and the network picks the closest
// character, which then replaces the cell entirely.
//
// Only a uniform cell in the background color binarizes to all zeros. A
// uniform cell in any other color makes that color the foreground, so
// every pixel is set.
func EncodePetscii(m *raster.Image, p rgb.Palette, metric rgb.Metric, n *glyph.Network, cs *glyph.Charset) (*Petscii, error) {
	if err := check(m, p); err != nil {
		return nil, err
	}
	if n == nil || cs == nil {
		return nil, errNoGlyphs
	}

	bg := Background(m, p, metric)
	pt := &Petscii{
		Background: uint8(bg),
		Palette:    p,
		rendered:   raster.NewImage(Width, Height),
	}
	backLuma := rgb.Luma(p[bg])

	for i := 0; i < numCells; i++ {
		r := cell(i, cellWidth)

		f, farthest := 0, 0.0
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				c := m.RGBAt(x, y)
				if d := math.Abs(rgb.Luma(c) - backLuma); d > farthest {
					f, farthest = p.Nearest(c, metric), d
				}
			}
		}

		code := n.Classify(Binarize(m, r, p[f], p[bg], metric))
		pt.Screen[i] = uint8(code)
		pt.Nibbles[i] = uint8(f)

		for y := 0; y < cellHeight; y++ {
			for x := 0; x < cellWidth; x++ {
				c := p[bg]
				if cs.Pixel(code, x, y) {
					c = p[f]
				}
				pt.rendered.Set(r.Min.X+x, r.Min.Y+y, c)
			}
		}
	}

	return pt, nil
}
