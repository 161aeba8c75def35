/*
Package raster implements the true color pixel buffer consumed by the
encoders.

Pixels are stored row-major as R, G, B byte triples regardless of the
channel order of the buffer they were created from.
*/
package raster

import (
	"errors"
	"image"
	"image/color"

	"github.com/paich64/retropic/rgb"
)

// Layout is the channel order of a raw pixel buffer.
type Layout int

const (
	// LayoutRGB stores red, green then blue.
	LayoutRGB Layout = iota
	// LayoutBGR stores blue, green then red.
	LayoutBGR
)

var (
	// ErrUnsupportedLayout is returned for any channel order other than
	// LayoutRGB or LayoutBGR.
	ErrUnsupportedLayout = errors.New("raster: unsupported pixel layout")

	errBadSize = errors.New("raster: buffer does not match dimensions")
)

// Image is an RGB pixel buffer. It implements the image.Image interface.
type Image struct {
	Width, Height int
	Pix           []uint8
}

// NewImage returns a black image of the given size.
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// New copies a raw pixel buffer in the given layout.
func New(width, height int, pix []uint8, layout Layout) (*Image, error) {
	if layout != LayoutRGB && layout != LayoutBGR {
		return nil, ErrUnsupportedLayout
	}
	if width < 0 || height < 0 || len(pix) != width*height*3 {
		return nil, errBadSize
	}

	m := &Image{
		Width:  width,
		Height: height,
		Pix:    append([]uint8(nil), pix...),
	}
	if layout == LayoutBGR {
		swap(m.Pix)
	}
	return m, nil
}

func swap(pix []uint8) {
	for i := 0; i < len(pix); i += 3 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}

// FromImage converts any image.Image, ignoring alpha. The result always
// starts at (0, 0).
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	m := NewImage(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			m.Set(x-b.Min.X, y-b.Min.Y, rgb.Model.Convert(src.At(x, y)).(rgb.Color))
		}
	}
	return m
}

// Bytes returns a copy of the pixel buffer in the given layout.
func (m *Image) Bytes(layout Layout) ([]uint8, error) {
	if layout != LayoutRGB && layout != LayoutBGR {
		return nil, ErrUnsupportedLayout
	}
	pix := append([]uint8(nil), m.Pix...)
	if layout == LayoutBGR {
		swap(pix)
	}
	return pix, nil
}

// Clone returns a deep copy of m.
func (m *Image) Clone() *Image {
	return &Image{
		Width:  m.Width,
		Height: m.Height,
		Pix:    append([]uint8(nil), m.Pix...),
	}
}

// Offset returns the index of the first byte of the pixel at (x, y).
func (m *Image) Offset(x, y int) int {
	return (y*m.Width + x) * 3
}

// RGBAt returns the color of the pixel at (x, y).
func (m *Image) RGBAt(x, y int) rgb.Color {
	i := m.Offset(x, y)
	return rgb.Color{R: m.Pix[i], G: m.Pix[i+1], B: m.Pix[i+2]}
}

// Set changes the color of the pixel at (x, y).
func (m *Image) Set(x, y int, c rgb.Color) {
	i := m.Offset(x, y)
	m.Pix[i], m.Pix[i+1], m.Pix[i+2] = c.R, c.G, c.B
}

// ColorModel implements the image.Image interface.
func (m *Image) ColorModel() color.Model {
	return rgb.Model
}

// Bounds implements the image.Image interface.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// At implements the image.Image interface.
func (m *Image) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(m.Bounds())) {
		return rgb.Color{}
	}
	return m.RGBAt(x, y)
}
