package amiga

import (
	"math"

	"github.com/paich64/retropic/dither"
	"github.com/paich64/retropic/raster"
	"github.com/paich64/retropic/rgb"
)

// HAMColors is the number of base palette entries HAM8 can address.
const HAMColors = 64

// HAM8 control bits, the upper two bits of each pixel.
const (
	TagPalette uint8 = 0x00
	TagBlue    uint8 = 0x40
	TagRed     uint8 = 0x80
	TagGreen   uint8 = 0xc0

	tagMask   = 0xc0
	levelMask = 0x3f
	levels    = 64
)

// Level expands a 6-bit channel level to 8 bits.
func Level(v uint8) uint8 {
	v &= levelMask
	return v<<2 | v>>4
}

// Register is the color carried from one pixel to the next along a row.
// RowStart is set for the first pixel, which must use a palette color.
type Register struct {
	Color    rgb.Color
	RowStart bool
}

// NewRow returns the register state at the start of a row.
func NewRow() Register {
	return Register{RowStart: true}
}

type candidate struct {
	level    uint8
	distance float64
}

// Step picks the pixel value for want given the current register. Either
// the nearest palette entry is used or one channel of the previous color
// is replaced, whichever is closer. On equal distance red is preferred to
// green, green to blue and any modification to the palette.
func Step(reg Register, want rgb.Color, p rgb.Palette, metric rgb.Metric) (uint8, Register) {
	i := p.Nearest(want, metric)
	if reg.RowStart {
		return TagPalette | uint8(i), Register{Color: p[i]}
	}

	direct := metric.Distance(want, p[i])

	r := candidate{distance: math.MaxFloat64}
	g, b := r, r
	for v := uint8(0); v < levels; v++ {
		s := Level(v)

		c := reg.Color
		c.R = s
		if d := metric.Distance(want, c); d < r.distance {
			r = candidate{v, d}
		}

		c = reg.Color
		c.G = s
		if d := metric.Distance(want, c); d < g.distance {
			g = candidate{v, d}
		}

		c = reg.Color
		c.B = s
		if d := metric.Distance(want, c); d < b.distance {
			b = candidate{v, d}
		}
	}

	next := reg.Color
	switch {
	case r.distance <= direct && r.distance <= g.distance && r.distance <= b.distance:
		next.R = Level(r.level)
		return TagRed | r.level, Register{Color: next}
	case g.distance <= direct && g.distance <= b.distance:
		next.G = Level(g.level)
		return TagGreen | g.level, Register{Color: next}
	case b.distance <= direct:
		next.B = Level(b.level)
		return TagBlue | b.level, Register{Color: next}
	}
	return TagPalette | uint8(i), Register{Color: p[i]}
}

// EncodeHAM encodes m in HAM8 against a base palette of up to 64 colors.
// The color actually displayed, not the source pixel, is carried forward
// and used for the dithering residual. A nil kernel disables dithering.
func EncodeHAM(m *raster.Image, p rgb.Palette, metric rgb.Metric, k *dither.Kernel) (*Bitplanes, error) {
	if len(p) == 0 || len(p) > HAMColors {
		return nil, errPalette
	}

	b, err := newBitplanes(m.Width, m.Height, p)
	if err != nil {
		return nil, err
	}

	work := dither.NewBuffer(m)
	for y := 0; y < m.Height; y++ {
		reg := NewRow()
		for x := 0; x < m.Width; x++ {
			want := work.At(x, y)

			var v uint8
			v, reg = Step(reg, want, p, metric)

			b.set(x, y, v)
			b.rendered.Set(x, y, reg.Color)

			if k != nil {
				work.Diffuse(k, work.Bounds(), x, y, dither.Residual(want, reg.Color))
			}
		}
	}

	return b, nil
}

// DecodeHAM replays the HAM8 values in b and returns the displayed image.
func DecodeHAM(b *Bitplanes) *raster.Image {
	m := raster.NewImage(b.Width, b.Height)
	for y := 0; y < b.Height; y++ {
		var c rgb.Color
		for x := 0; x < b.Width; x++ {
			v := b.Value(x, y)
			switch v & tagMask {
			case TagPalette:
				if i := int(v & levelMask); i < len(b.Palette) {
					c = b.Palette[i]
				}
			case TagRed:
				c.R = Level(v)
			case TagGreen:
				c.G = Level(v)
			case TagBlue:
				c.B = Level(v)
			}
			m.Set(x, y, c)
		}
	}
	return m
}
