/*
Package retropic converts true-color images into the bitmap formats of the
Amiga and Commodore 64.

Every format goes through the same two steps: a palette is derived from the
image and the image is then encoded against it. An Encoder bundles both
steps for one Format, Encode runs them and returns an Artifact holding the
raw hardware data along with the image as the machine would display it.

A Converter adds file handling on top, caching artifacts in a sqlite
database so identical conversions are only computed once.
*/
package retropic

import (
	"encoding"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/paich64/retropic/amiga"
	"github.com/paich64/retropic/c64"
	"github.com/paich64/retropic/dither"
	"github.com/paich64/retropic/glyph"
	"github.com/paich64/retropic/palette"
	"github.com/paich64/retropic/raster"
	"github.com/paich64/retropic/rgb"
)

// Format identifies a target hardware format.
type Format int

const (
	// FormatStandard is the Amiga 256 color planar bitmap.
	FormatStandard Format = iota
	// FormatHAM is the Amiga hold-and-modify bitmap.
	FormatHAM
	// FormatHires is the C64 two colors per cell bitmap.
	FormatHires
	// FormatMulticolor is the C64 four colors per cell bitmap.
	FormatMulticolor
	// FormatPetscii is the C64 character screen.
	FormatPetscii
)

var formatNames = []string{"standard", "ham", "hires", "multicolor", "petscii"}

var (
	errUnknownFormat    = errors.New("retropic: unknown format")
	errUnknownQuantizer = errors.New("retropic: unknown quantizer")
	errUnknownSize      = errors.New("retropic: unsupported screen size")
)

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "unknown"
}

// ParseFormat returns the Format named by s.
func ParseFormat(s string) (Format, error) {
	for i, name := range formatNames {
		if strings.EqualFold(s, name) {
			return Format(i), nil
		}
	}
	return 0, errUnknownFormat
}

// Amiga PAL lowres, lowres interlaced and hires interlaced screens.
var amigaSizes = []image.Point{
	{amiga.DefaultWidth, amiga.DefaultHeight},
	{320, 512},
	{640, 512},
}

// Sizes returns the screen geometries the format supports, the first one
// is the default.
func (f Format) Sizes() []image.Point {
	switch f {
	case FormatStandard, FormatHAM:
		return amigaSizes
	}
	return []image.Point{{c64.Width, c64.Height}}
}

// Size returns the default screen geometry of the format.
func (f Format) Size() image.Point {
	return f.Sizes()[0]
}

// ParseSize parses a geometry such as "640x512".
func ParseSize(s string) (image.Point, error) {
	var p image.Point
	if n, err := fmt.Sscanf(strings.ToLower(s), "%dx%d", &p.X, &p.Y); err != nil || n != 2 || p.X < 1 || p.Y < 1 {
		return image.Point{}, errUnknownSize
	}
	return p, nil
}

// Quantizer selects how the Amiga formats derive their palette.
type Quantizer int

const (
	// QuantizeSOM trains a self-organizing map.
	QuantizeSOM Quantizer = iota
	// QuantizeMedianCut uses median cut.
	QuantizeMedianCut
	// QuantizeUniform uses an equal-step palette.
	QuantizeUniform
)

var quantizerNames = []string{"som", "median-cut", "uniform"}

func (q Quantizer) String() string {
	if q >= 0 && int(q) < len(quantizerNames) {
		return quantizerNames[q]
	}
	return "unknown"
}

// ParseQuantizer returns the Quantizer named by s.
func ParseQuantizer(s string) (Quantizer, error) {
	for i, name := range quantizerNames {
		if strings.EqualFold(s, name) {
			return Quantizer(i), nil
		}
	}
	return 0, errUnknownQuantizer
}

// Config holds every setting of a conversion.
type Config struct {
	Format    Format
	Dither    bool
	Algorithm dither.Algorithm
	Mode      rgb.Mode
	Sampling  c64.Sampling
	Merge     c64.Merge
	Quantizer Quantizer
	// Size is the screen geometry, the zero value means Format.Size.
	Size image.Point
	// Epochs and Seed drive palette training.
	Epochs int
	Seed   int64
	// Network and Charset are only used by FormatPetscii.
	Network *glyph.Network
	Charset *glyph.Charset
}

// DefaultEpochs is the number of training rounds used by DefaultConfig.
const DefaultEpochs = 30

// DefaultConfig returns the usual settings for f.
func DefaultConfig(f Format) Config {
	return Config{
		Format:    f,
		Dither:    true,
		Algorithm: dither.AlgorithmFloydSteinberg,
		Mode:      rgb.Perceptual,
		Epochs:    DefaultEpochs,
	}
}

func (c Config) metric() rgb.Metric {
	return rgb.Metric{Mode: c.Mode}
}

// size returns the screen geometry, checking it against the format.
func (c Config) size() (image.Point, error) {
	if c.Size == (image.Point{}) {
		return c.Format.Size(), nil
	}
	for _, p := range c.Format.Sizes() {
		if p == c.Size {
			return p, nil
		}
	}
	return image.Point{}, errUnknownSize
}

func (c Config) kernel() *dither.Kernel {
	if !c.Dither {
		return nil
	}
	return c.Algorithm.Kernel()
}

// Artifact is the result of an encode.
type Artifact interface {
	encoding.BinaryMarshaler
	// Rendered returns the image as the hardware would display it.
	Rendered() *raster.Image
	// Colors returns the palette the artifact references.
	Colors() rgb.Palette
}

// Encoder derives a palette for an image and encodes the image with it.
type Encoder interface {
	Palette(*raster.Image) (rgb.Palette, error)
	Encode(*raster.Image, rgb.Palette) (Artifact, error)
}

type encoder struct {
	generator palette.Generator
	encode    func(*raster.Image, rgb.Palette) (Artifact, error)
}

func (e *encoder) Palette(m *raster.Image) (rgb.Palette, error) {
	return e.generator.Generate(m)
}

func (e *encoder) Encode(m *raster.Image, p rgb.Palette) (Artifact, error) {
	return e.encode(m, p)
}

// amigaGenerator returns the palette generator for an Amiga format with
// a side by side grid of colors.
func amigaGenerator(cfg Config, side int) (palette.Generator, error) {
	switch cfg.Quantizer {
	case QuantizeSOM:
		return palette.SOM{
			Width:  side,
			Height: side,
			Epochs: cfg.Epochs,
			Seed:   cfg.Seed,
			Metric: cfg.metric(),
		}, nil
	case QuantizeMedianCut:
		return palette.MedianCut{Size: side * side}, nil
	case QuantizeUniform:
		// 8x8x4 for 256 colors, 4x4x4 for 64
		if side == 16 {
			return palette.Uniform{R: 8, G: 8, B: 4}, nil
		}
		return palette.Uniform{R: 4, G: 4, B: 4}, nil
	}
	return nil, errUnknownQuantizer
}

// NewEncoder returns the Encoder for cfg.Format.
func NewEncoder(cfg Config) (Encoder, error) {
	e := new(encoder)
	metric, k := cfg.metric(), cfg.kernel()

	if _, err := cfg.size(); err != nil {
		return nil, err
	}

	var err error
	switch cfg.Format {
	case FormatStandard:
		if e.generator, err = amigaGenerator(cfg, 16); err != nil {
			return nil, err
		}
		e.encode = func(m *raster.Image, p rgb.Palette) (Artifact, error) {
			return amiga.EncodeStandard(m, p, metric, k)
		}
	case FormatHAM:
		if e.generator, err = amigaGenerator(cfg, 8); err != nil {
			return nil, err
		}
		e.encode = func(m *raster.Image, p rgb.Palette) (Artifact, error) {
			return amiga.EncodeHAM(m, p, metric, k)
		}
	case FormatHires:
		e.generator = palette.Fixed(c64.Palette)
		e.encode = func(m *raster.Image, p rgb.Palette) (Artifact, error) {
			return c64.EncodeHires(m, p, metric, k, cfg.Sampling)
		}
	case FormatMulticolor:
		e.generator = palette.Fixed(c64.Palette)
		e.encode = func(m *raster.Image, p rgb.Palette) (Artifact, error) {
			return c64.EncodeMulticolor(m, p, metric, k, cfg.Merge)
		}
	case FormatPetscii:
		e.generator = palette.Fixed(c64.Palette)
		e.encode = func(m *raster.Image, p rgb.Palette) (Artifact, error) {
			return c64.EncodePetscii(m, p, metric, cfg.Network, cfg.Charset)
		}
	default:
		return nil, errUnknownFormat
	}

	return e, nil
}

// Encode derives a palette for m and encodes m with it.
func Encode(m *raster.Image, cfg Config) (Artifact, error) {
	e, err := NewEncoder(cfg)
	if err != nil {
		return nil, err
	}

	p, err := e.Palette(m)
	if err != nil {
		return nil, fmt.Errorf("retropic: palette: %w", err)
	}

	a, err := e.Encode(m, p)
	if err != nil {
		return nil, fmt.Errorf("retropic: %s: %w", cfg.Format, err)
	}
	return a, nil
}
