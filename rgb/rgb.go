/*
Package rgb implements the 24-bit colors, palettes and color distance
metrics shared by every encoder.

Two distance modes are supported; a plain sum of squared channel
differences and a perceptual variant that weights each squared difference
by the channel's contribution to luma, biasing matches toward green.
*/
package rgb

import (
	"errors"
	"image/color"
	"strings"
)

// Color is an opaque 24-bit color. It implements the color.Color interface.
type Color struct {
	R, G, B uint8
}

// RGBA implements the color.Color interface.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// Float returns the channels as floating point values.
func (c Color) Float() [3]float64 {
	return [3]float64{float64(c.R), float64(c.G), float64(c.B)}
}

// Model converts any color.Color to a Color, discarding alpha.
var Model = color.ModelFunc(func(c color.Color) color.Color {
	if c, ok := c.(Color); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	return Color{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
})

// Hex returns the color for a packed 0xRRGGBB value.
func Hex(v uint32) Color {
	return Color{uint8(v >> 16), uint8(v >> 8), uint8(v)}
}

// Luma returns the perceived brightness of c in the range 0 to 255.
func Luma(c Color) float64 {
	return lumaR*float64(c.R) + lumaG*float64(c.G) + lumaB*float64(c.B)
}

const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Mode selects the distance function used by a Metric.
type Mode int

const (
	// Euclidean is the plain sum of squared channel differences.
	Euclidean Mode = iota
	// Perceptual weights each squared channel difference by its luma
	// coefficient.
	Perceptual
)

var errUnknownMode = errors.New("rgb: unknown distance mode")

var modeNames = map[Mode]string{
	Euclidean:  "euclidean",
	Perceptual: "perceptual",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "unknown"
}

// ParseMode returns the Mode named by s.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, errUnknownMode
}

// Metric measures the distance between two colors. The zero value is a
// Euclidean metric.
type Metric struct {
	Mode Mode
}

// Distance returns the non-negative distance between a and b.
func (m Metric) Distance(a, b Color) float64 {
	return m.DistanceF(a.Float(), b.Float())
}

// DistanceF is Distance for unquantized channel values.
func (m Metric) DistanceF(a, b [3]float64) float64 {
	dr, dg, db := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	if m.Mode == Perceptual {
		return lumaR*dr*dr + lumaG*dg*dg + lumaB*db*db
	}
	return dr*dr + dg*dg + db*db
}

// Palette is an ordered set of colors. Indices into it are the colors
// written by the encoders.
type Palette []Color

// Nearest returns the index of the entry closest to c. A linear scan is
// used and the lowest index wins a tie.
func (p Palette) Nearest(c Color, m Metric) int {
	best, bestSum := 0, -1.0
	for i, e := range p {
		if d := m.Distance(c, e); bestSum < 0 || d < bestSum {
			best, bestSum = i, d
		}
	}
	return best
}

// Convert returns p as a color.Palette.
func (p Palette) Convert() color.Palette {
	cp := make(color.Palette, len(p))
	for i, c := range p {
		cp[i] = c
	}
	return cp
}
