package palette

import (
	"testing"

	"github.com/paich64/retropic/raster"
	"github.com/paich64/retropic/rgb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c rgb.Color) *raster.Image {
	m := raster.NewImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, c)
		}
	}
	return m
}

func stripes(w, h int, colors ...rgb.Color) *raster.Image {
	m := raster.NewImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, colors[x%len(colors)])
		}
	}
	return m
}

func TestUniform(t *testing.T) {
	p, err := Uniform{R: 2, G: 3, B: 2}.Generate(nil)
	require.NoError(t, err)
	require.Len(t, p, 12)

	assert.Equal(t, rgb.Color{}, p[0])
	assert.Equal(t, rgb.Color{B: 255}, p[1])
	assert.Equal(t, rgb.Color{G: 127}, p[2])
	assert.Equal(t, rgb.Color{R: 255, G: 255, B: 255}, p[11])

	again, err := Uniform{R: 2, G: 3, B: 2}.Generate(nil)
	require.NoError(t, err)
	assert.Equal(t, p, again)

	_, err = Uniform{R: 0, G: 1, B: 1}.Generate(nil)
	assert.Error(t, err)
}

func TestFixed(t *testing.T) {
	f := Fixed{{R: 1}, {G: 2}}
	p, err := f.Generate(nil)
	require.NoError(t, err)
	assert.Equal(t, rgb.Palette{{R: 1}, {G: 2}}, p)

	// Returned palette is a copy
	p[0] = rgb.Color{}
	assert.Equal(t, rgb.Color{R: 1}, f[0])
}

func TestSOMSolidImage(t *testing.T) {
	red := rgb.Color{R: 255}
	p, err := SOM{Width: 4, Height: 4, Epochs: 4, Samples: 64, Seed: 1}.Generate(solid(16, 16, red))
	require.NoError(t, err)
	require.Len(t, p, 16)

	// Fewer colors than entries converge to duplicates
	for _, c := range p {
		assert.Equal(t, red, c)
	}
}

func TestSOMReproducible(t *testing.T) {
	m := stripes(32, 8, rgb.Color{R: 200, G: 10, B: 10}, rgb.Color{G: 180, B: 40}, rgb.Color{R: 20, G: 20, B: 220}, rgb.Color{R: 250, G: 250, B: 250})
	s := SOM{Width: 2, Height: 2, Epochs: 6, Samples: 200, Seed: 42}

	p1, err := s.Generate(m)
	require.NoError(t, err)
	p2, err := s.Generate(m)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestSOMConverges(t *testing.T) {
	colors := []rgb.Color{{R: 250}, {G: 250}, {B: 250}, {R: 250, G: 250, B: 250}}
	m := stripes(64, 16, colors...)

	p, err := SOM{Width: 4, Height: 4, Epochs: 10, Samples: 1000, Seed: 7}.Generate(m)
	require.NoError(t, err)

	var metric rgb.Metric
	for _, c := range colors {
		got := p[p.Nearest(c, metric)]
		assert.Less(t, metric.Distance(c, got), 40.0*40.0, "no entry close to %v, got %v", c, got)
	}
}

func TestSOMErrors(t *testing.T) {
	_, err := SOM{Width: 0, Height: 4}.Generate(solid(1, 1, rgb.Color{}))
	assert.Error(t, err)

	_, err = SOM{Width: 4, Height: 4}.Generate(raster.NewImage(0, 0))
	assert.Error(t, err)

	assert.Nil(t, Train(nil, 4, 4, 1, 1, 0, rgb.Metric{}))
}

func TestMedianCut(t *testing.T) {
	m := stripes(16, 16, rgb.Color{R: 255}, rgb.Color{B: 255})

	p, err := MedianCut{Size: 4}.Generate(m)
	require.NoError(t, err)
	require.Len(t, p, 4)

	var metric rgb.Metric
	for _, c := range []rgb.Color{{R: 255}, {B: 255}} {
		assert.Less(t, metric.Distance(c, p[p.Nearest(c, metric)]), 16.0)
	}
}
