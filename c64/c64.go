/*
Package c64 implements encoders for the Commodore 64 bitmap and character
screen modes.

The screen is 320 by 200 pixels split into a 40 by 25 grid of cells. In
hires mode each 8 by 8 cell may use two colors, in multicolor mode pixels
are twice as wide so each cell is 4 by 8 and may use four colors, one of
which is shared by the whole screen. PETSCII mode replaces each cell with
one of 256 characters drawn in a foreground color over a global background.

The bitmap is written cell by cell, eight bytes per cell, one byte per
pixel row with the leftmost pixel in the most significant bit(s).
*/
package c64

import (
	"errors"
	"image"

	"github.com/paich64/retropic/raster"
	"github.com/paich64/retropic/rgb"
)

const (
	// Width and Height of the screen in pixels.
	Width  = 320
	Height = 200

	cellWidth   = 8
	cellHeight  = 8
	cellsX      = Width / cellWidth
	cellsY      = Height / cellHeight
	numCells    = cellsX * cellsY
	bitmapBytes = numCells * cellHeight

	// Colors is the size of the hardware palette.
	Colors = 16

	multiWidth     = Width / 2
	multiCellWidth = cellWidth / 2
)

// Palette is the C64 hardware palette.
var Palette = rgb.Palette{
	rgb.Hex(0x000000),
	rgb.Hex(0xffffff),
	rgb.Hex(0x68372b),
	rgb.Hex(0x70a4b2),
	rgb.Hex(0x6f3d86),
	rgb.Hex(0x588d43),
	rgb.Hex(0x352879),
	rgb.Hex(0xb8c76f),
	rgb.Hex(0x6f4f25),
	rgb.Hex(0x433900),
	rgb.Hex(0x9a6759),
	rgb.Hex(0x444444),
	rgb.Hex(0x6c6c6c),
	rgb.Hex(0x9ad284),
	rgb.Hex(0x6c5eb5),
	rgb.Hex(0x959595),
}

var (
	errSize    = errors.New("c64: image must be 320 by 200")
	errPalette = errors.New("c64: palette must have between 1 and 16 colors")
)

func check(m *raster.Image, p rgb.Palette) error {
	if m.Width != Width || m.Height != Height {
		return errSize
	}
	if len(p) == 0 || len(p) > Colors {
		return errPalette
	}
	return nil
}

// cell returns the pixel rectangle of cell i for cells w pixels wide.
func cell(i, w int) image.Rectangle {
	x, y := i%cellsX*w, i/cellsX*cellHeight
	return image.Rect(x, y, x+w, y+cellHeight)
}
