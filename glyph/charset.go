package glyph

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"
)

const (
	// CharsetSize is the size in bytes of 256 8 by 8 characters.
	CharsetSize = Outputs * 8
	// Bit 7 of each row is the leftmost pixel.
	leftmost = 0x80
)

var errCharsetSize = errors.New("glyph: charset must be 2048 bytes, optionally preceded by a load address")

// Charset holds the 8 row bytes of each of 256 characters.
type Charset [CharsetSize]byte

// Row returns row y of character code.
func (c *Charset) Row(code, y int) byte {
	return c[code<<3+y]
}

// Pixel reports whether the pixel at (x, y) of character code is set.
func (c *Charset) Pixel(code, x, y int) bool {
	return c.Row(code, y)&(leftmost>>uint(x)) != 0
}

// LoadCharset reads a raw charset from r. A two byte load address in
// front of the data, as found in C64 program files, is skipped.
func LoadCharset(r io.Reader) (*Charset, error) {
	if r == nil {
		return nil, errCharsetSize
	}
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("glyph: reading charset: %w", err)
	}

	switch len(b) {
	case CharsetSize + 2:
		b = b[2:]
	case CharsetSize:
	default:
		return nil, errCharsetSize
	}

	c := new(Charset)
	copy(c[:], b)
	return c, nil
}
