package c64

import (
	"bytes"
	"errors"
	"strings"

	"github.com/paich64/retropic/dither"
	"github.com/paich64/retropic/raster"
	"github.com/paich64/retropic/rgb"
)

// Merge selects how two horizontally adjacent pixels become one wide
// multicolor pixel.
type Merge int

const (
	// MergeAverage averages each channel.
	MergeAverage Merge = iota
	// MergeBrightest keeps the brighter pixel.
	MergeBrightest
)

var errUnknownMerge = errors.New("c64: unknown merge")

var mergeNames = []string{"average", "brightest"}

func (mg Merge) String() string {
	if mg >= 0 && int(mg) < len(mergeNames) {
		return mergeNames[mg]
	}
	return "unknown"
}

// ParseMerge returns the Merge named by s.
func ParseMerge(s string) (Merge, error) {
	for i, name := range mergeNames {
		if strings.EqualFold(s, name) {
			return Merge(i), nil
		}
	}
	return 0, errUnknownMerge
}

func (mg Merge) apply(a, b rgb.Color) rgb.Color {
	if mg == MergeBrightest {
		if rgb.Luma(a) > rgb.Luma(b) {
			return a
		}
		return b
	}
	return rgb.Color{
		R: uint8((int(a.R) + int(b.R)) >> 1),
		G: uint8((int(a.G) + int(b.G)) >> 1),
		B: uint8((int(a.B) + int(b.B)) >> 1),
	}
}

// Multicolor is a four color per cell bitmap. It implements the
// encoding.BinaryMarshaler interface.
type Multicolor struct {
	// Bitmap holds two bits per wide pixel selecting a cell slot.
	Bitmap [bitmapBytes]byte
	// Screen holds slot 1 in the upper nibble and slot 2 in the lower.
	Screen [numCells]byte
	// Nibbles holds slot 3, the color RAM.
	Nibbles [numCells]byte
	// Background is slot 0 of every cell, the palette entry nearest to
	// the average color of the whole image.
	Background uint8
	Average    rgb.Color
	Palette    rgb.Palette

	rendered *raster.Image
}

// Slots returns the four colors available to cell i.
func (mc *Multicolor) Slots(i int) [4]rgb.Color {
	return [4]rgb.Color{
		mc.Palette[mc.Background],
		mc.Palette[mc.Screen[i]>>4],
		mc.Palette[mc.Screen[i]&0x0f],
		mc.Palette[mc.Nibbles[i]&0x0f],
	}
}

// Rendered returns the image as it would be displayed, at full width.
func (mc *Multicolor) Rendered() *raster.Image {
	return mc.rendered
}

// Colors returns the palette the cells index.
func (mc *Multicolor) Colors() rgb.Palette {
	return mc.Palette
}

// MarshalBinary returns the bitmap, screen, color nibbles and the
// background index.
func (mc *Multicolor) MarshalBinary() ([]byte, error) {
	b := new(bytes.Buffer)
	b.Write(mc.Bitmap[:])
	b.Write(mc.Screen[:])
	b.Write(mc.Nibbles[:])
	b.WriteByte(mc.Background)
	return b.Bytes(), nil
}

// shrink merges pixel pairs of a 320 pixel wide image, snapping each
// merged pixel to the palette. It also returns the average of the merged
// pixels before snapping.
func shrink(m *raster.Image, p rgb.Palette, metric rgb.Metric, mg Merge) (*raster.Image, rgb.Color) {
	half := raster.NewImage(multiWidth, Height)

	var sr, sg, sb int
	for y := 0; y < Height; y++ {
		for x := 0; x < multiWidth; x++ {
			c := mg.apply(m.RGBAt(x<<1, y), m.RGBAt(x<<1+1, y))
			sr += int(c.R)
			sg += int(c.G)
			sb += int(c.B)
			half.Set(x, y, p[p.Nearest(c, metric)])
		}
	}

	n := multiWidth * Height
	return half, rgb.Color{R: uint8(sr / n), G: uint8(sg / n), B: uint8(sb / n)}
}

// Three most frequent indices, earlier indices win ties and unused slots
// stay at index 0
func mostFrequent(occurrence []int) [3]int {
	var idx, cnt [3]int
	for i, k := range occurrence {
		switch {
		case k > cnt[0]:
			idx[2], cnt[2] = idx[1], cnt[1]
			idx[1], cnt[1] = idx[0], cnt[0]
			idx[0], cnt[0] = i, k
		case k > cnt[1]:
			idx[2], cnt[2] = idx[1], cnt[1]
			idx[1], cnt[1] = i, k
		case k > cnt[2]:
			idx[2], cnt[2] = i, k
		}
	}
	return idx
}

// EncodeMulticolor encodes m as a multicolor bitmap. The image is first
// halved horizontally, then each cell takes its three most frequent
// palette colors plus the shared background. A nil kernel disables
// dithering, otherwise residuals never leave the cell.
func EncodeMulticolor(m *raster.Image, p rgb.Palette, metric rgb.Metric, k *dither.Kernel, mg Merge) (*Multicolor, error) {
	if err := check(m, p); err != nil {
		return nil, err
	}

	// Global statistics must be complete before any cell is encoded
	half, avg := shrink(m, p, metric, mg)

	mc := &Multicolor{
		Average:    avg,
		Background: uint8(p.Nearest(avg, metric)),
		Palette:    p,
		rendered:   raster.NewImage(Width, Height),
	}
	work := dither.NewBuffer(half)

	occurrence := make([]int, len(p))
	for i := 0; i < numCells; i++ {
		r := cell(i, multiCellWidth)

		for j := range occurrence {
			occurrence[j] = 0
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				occurrence[p.Nearest(half.RGBAt(x, y), metric)]++
			}
		}

		top := mostFrequent(occurrence)
		mc.Screen[i] = byte(top[0]<<4 | top[1])
		mc.Nibbles[i] = byte(top[2])

		slots := mc.Slots(i)
		local := rgb.Palette(slots[:])

		for y := r.Min.Y; y < r.Max.Y; y++ {
			var row byte
			for x := r.Min.X; x < r.Max.X; x++ {
				want := work.At(x, y)
				j := local.Nearest(want, metric)

				row |= byte(j) << uint(6-(x-r.Min.X)<<1)
				mc.rendered.Set(x<<1, y, local[j])
				mc.rendered.Set(x<<1+1, y, local[j])

				if k != nil {
					work.Diffuse(k, r, x, y, dither.Residual(want, local[j]))
				}
			}
			mc.Bitmap[i*cellHeight+y-r.Min.Y] = row
		}
	}

	return mc, nil
}
