package amiga

import (
	"github.com/paich64/retropic/dither"
	"github.com/paich64/retropic/raster"
	"github.com/paich64/retropic/rgb"
)

// StandardColors is the palette size of the 256 color mode.
const StandardColors = 256

// EncodeStandard maps every pixel of m to its nearest palette entry and
// writes the 8-bit index into the planes. A nil kernel disables dithering.
func EncodeStandard(m *raster.Image, p rgb.Palette, metric rgb.Metric, k *dither.Kernel) (*Bitplanes, error) {
	if len(p) == 0 || len(p) > StandardColors {
		return nil, errPalette
	}

	b, err := newBitplanes(m.Width, m.Height, p)
	if err != nil {
		return nil, err
	}

	work := dither.NewBuffer(m)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			want := work.At(x, y)
			i := p.Nearest(want, metric)

			b.set(x, y, uint8(i))
			b.rendered.Set(x, y, p[i])

			if k != nil {
				work.Diffuse(k, work.Bounds(), x, y, dither.Residual(want, p[i]))
			}
		}
	}

	return b, nil
}
