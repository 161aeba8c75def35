/*
Package dither implements error diffusion over a floating point working
copy of an image.

Residuals are only ever pushed to pixels that have not been visited yet in
raster order, and only within a caller supplied rectangle. Anything that
would land outside that rectangle is dropped.
*/
package dither

import (
	"errors"
	"image"
	"strings"

	"github.com/paich64/retropic/raster"
	"github.com/paich64/retropic/rgb"
)

type tap struct {
	dx, dy int
	weight float32
}

// Kernel is a fixed set of neighbor offsets and the share of the residual
// each receives.
type Kernel struct {
	name string
	taps []tap
}

var (
	// FloydSteinberg distributes the whole residual over four neighbors.
	FloydSteinberg = &Kernel{
		name: "fs",
		taps: []tap{
			{1, 0, 7.0 / 16},
			{-1, 1, 3.0 / 16},
			{0, 1, 5.0 / 16},
			{1, 1, 1.0 / 16},
		},
	}

	// Atkinson gives an eighth to each of six neighbors, deliberately
	// losing a quarter of the residual.
	Atkinson = &Kernel{
		name: "atkinson",
		taps: []tap{
			{1, 0, 1.0 / 8},
			{2, 0, 1.0 / 8},
			{-1, 1, 1.0 / 8},
			{0, 1, 1.0 / 8},
			{1, 1, 1.0 / 8},
			{0, 2, 1.0 / 8},
		},
	}
)

func (k *Kernel) String() string {
	return k.name
}

// Sum returns the total of all weights.
func (k *Kernel) Sum() float32 {
	var s float32
	for _, t := range k.taps {
		s += t.weight
	}
	return s
}

// Algorithm names a kernel in configuration.
type Algorithm int

const (
	// AlgorithmFloydSteinberg selects FloydSteinberg.
	AlgorithmFloydSteinberg Algorithm = iota
	// AlgorithmAtkinson selects Atkinson.
	AlgorithmAtkinson
)

var errUnknownAlgorithm = errors.New("dither: unknown algorithm")

// Kernel returns the kernel for a.
func (a Algorithm) Kernel() *Kernel {
	if a == AlgorithmAtkinson {
		return Atkinson
	}
	return FloydSteinberg
}

func (a Algorithm) String() string {
	return a.Kernel().String()
}

// ParseAlgorithm returns the Algorithm named by s.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(s) {
	case "fs", "floyd-steinberg", "floydsteinberg":
		return AlgorithmFloydSteinberg, nil
	case "atkinson":
		return AlgorithmAtkinson, nil
	}
	return 0, errUnknownAlgorithm
}

// Buffer is the working copy of an image. Values may leave the 0 to 255
// range while residuals accumulate.
type Buffer struct {
	Width, Height int
	Pix           []float32
}

// NewBuffer returns a working copy of m.
func NewBuffer(m *raster.Image) *Buffer {
	b := &Buffer{
		Width:  m.Width,
		Height: m.Height,
		Pix:    make([]float32, len(m.Pix)),
	}
	for i, v := range m.Pix {
		b.Pix[i] = float32(v)
	}
	return b
}

// Bounds returns the full extent of the buffer.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

func saturate(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// At returns the pixel at (x, y) clamped to a displayable color.
func (b *Buffer) At(x, y int) rgb.Color {
	i := (y*b.Width + x) * 3
	return rgb.Color{R: saturate(b.Pix[i]), G: saturate(b.Pix[i+1]), B: saturate(b.Pix[i+2])}
}

// Set overwrites the pixel at (x, y).
func (b *Buffer) Set(x, y int, c rgb.Color) {
	i := (y*b.Width + x) * 3
	b.Pix[i], b.Pix[i+1], b.Pix[i+2] = float32(c.R), float32(c.G), float32(c.B)
}

// Residual returns the per channel difference between what was wanted and
// what was chosen.
func Residual(want, got rgb.Color) [3]float32 {
	return [3]float32{
		float32(want.R) - float32(got.R),
		float32(want.G) - float32(got.G),
		float32(want.B) - float32(got.B),
	}
}

// Diffuse spreads residual from the pixel at (x, y) to its neighbors
// according to k. Neighbors outside r, or outside the buffer, are skipped
// and their share is lost.
func (b *Buffer) Diffuse(k *Kernel, r image.Rectangle, x, y int, residual [3]float32) {
	r = r.Intersect(b.Bounds())
	for _, t := range k.taps {
		p := image.Pt(x+t.dx, y+t.dy)
		if !p.In(r) {
			continue
		}
		i := (p.Y*b.Width + p.X) * 3
		b.Pix[i] += residual[0] * t.weight
		b.Pix[i+1] += residual[1] * t.weight
		b.Pix[i+2] += residual[2] * t.weight
	}
}
