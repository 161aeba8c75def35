/*
Package amiga implements encoders for the AGA 256 color and HAM8 planar
screen modes.

Both modes use eight bitplanes. Each plane is a stream of 16-bit words,
one word per 16 horizontal pixels, rows following each other. The leftmost
pixel of a word is its most significant bit and plane n holds bit n of the
pixel's 8-bit value. Width must be a multiple of 16, any height works.
*/
package amiga

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/paich64/retropic/raster"
	"github.com/paich64/retropic/rgb"
)

const (
	// Depth is the number of bitplanes.
	Depth     = 8
	wordWidth = 16

	// Default screen size for both modes.
	DefaultWidth  = 320
	DefaultHeight = 256
)

var (
	errWidth   = errors.New("amiga: width must be a multiple of 16")
	errPalette = errors.New("amiga: palette size out of range")
)

// Bitplanes is the output of an encode pass. It implements the
// encoding.BinaryMarshaler interface.
type Bitplanes struct {
	Width, Height int
	Palette       rgb.Palette
	Planes        [Depth][]uint16

	rendered *raster.Image
}

func newBitplanes(width, height int, p rgb.Palette) (*Bitplanes, error) {
	if width%wordWidth != 0 {
		return nil, errWidth
	}
	b := &Bitplanes{
		Width:    width,
		Height:   height,
		Palette:  p,
		rendered: raster.NewImage(width, height),
	}
	words := width / wordWidth * height
	for i := range b.Planes {
		b.Planes[i] = make([]uint16, words)
	}
	return b, nil
}

func (b *Bitplanes) word(x, y int) (int, uint) {
	return y*(b.Width/wordWidth) + x/wordWidth, uint(wordWidth - 1 - x%wordWidth)
}

// Scatter the bits of v across the planes
func (b *Bitplanes) set(x, y int, v uint8) {
	i, shift := b.word(x, y)
	for p := range b.Planes {
		b.Planes[p][i] |= uint16(v>>uint(p)&1) << shift
	}
}

// Value gathers the 8-bit value of the pixel at (x, y) back from the
// planes.
func (b *Bitplanes) Value(x, y int) uint8 {
	i, shift := b.word(x, y)
	var v uint8
	for p := range b.Planes {
		v |= uint8(b.Planes[p][i]>>shift&1) << uint(p)
	}
	return v
}

// Rendered returns the image as it would be displayed.
func (b *Bitplanes) Rendered() *raster.Image {
	return b.rendered
}

// Colors returns the palette the planes index.
func (b *Bitplanes) Colors() rgb.Palette {
	return b.Palette
}

// MarshalBinary writes each plane in turn as big-endian words.
func (b *Bitplanes) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	for _, p := range b.Planes {
		if err := binary.Write(buf, binary.BigEndian, p); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
