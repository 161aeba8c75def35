package retropic

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConverter(t *testing.T) *Converter {
	c, err := New(filepath.Join(t.TempDir(), "cache.db"), log.New(ioutil.Discard, "", 0))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func writePNG(t *testing.T, file string, w, h int) {
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 5), B: uint8(x ^ y), A: 0xff})
		}
	}

	f, err := os.Create(file)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, m))
}

func writeGIF(t *testing.T, file string, w, h int) {
	m := image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{color.Black, color.White})
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetColorIndex(x, y, uint8((x^y)&1))
		}
	}

	f, err := os.Create(file)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, gif.Encode(f, m, nil))
}

func TestFit(t *testing.T) {
	m := image.NewRGBA(image.Rect(10, 10, 50, 30))
	r := Fit(m, FormatHires.Size())
	assert.Equal(t, 320, r.Width)
	assert.Equal(t, 200, r.Height)

	r = Fit(image.NewRGBA(image.Rect(0, 0, 320, 256)), FormatHAM.Size())
	assert.Equal(t, 320, r.Width)
	assert.Equal(t, 256, r.Height)
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "in.png"), filepath.Join(dir, "out.bin")
	writePNG(t, in, 64, 40)

	c := newConverter(t)
	cfg := DefaultConfig(FormatMulticolor)

	require.NoError(t, c.ConvertFile(in, out, cfg))
	first, err := ioutil.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, first, 10001)

	// Second run is served from the cache
	require.NoError(t, c.ConvertFile(in, out, cfg))
	second, err := ioutil.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	n, err := c.store.Length()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	cfg.Merge++
	require.NoError(t, c.ConvertFile(in, out, cfg))
	n, err = c.store.Length()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Error(t, c.ConvertFile(filepath.Join(dir, "missing.png"), out, cfg))

	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "bad.png"), []byte("not an image"), 0o644))
	assert.Error(t, c.ConvertFile(filepath.Join(dir, "bad.png"), out, cfg))
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "a/b/pic.png.hires", OutputName("a/b/pic.png", FormatHires))
	assert.Equal(t, "pic.tar.gif.ham", OutputName("pic.tar.gif", FormatHAM))
	assert.NotEqual(t, OutputName("pic.png", FormatHires), OutputName("pic.jpg", FormatHires))
}

func TestConvertDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".hidden"), 0o755))

	writePNG(t, filepath.Join(dir, "one.png"), 32, 32)
	writeGIF(t, filepath.Join(dir, "one.gif"), 32, 32)
	writePNG(t, filepath.Join(dir, "sub", "two.PNG"), 16, 48)
	writePNG(t, filepath.Join(dir, ".three.png"), 8, 8)
	writePNG(t, filepath.Join(dir, ".hidden", "four.png"), 8, 8)
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	c := newConverter(t)
	cfg := DefaultConfig(FormatHires)
	require.NoError(t, c.ConvertDir(dir, cfg))

	for _, file := range []string{"one.png.hires", "one.gif.hires", filepath.Join("sub", "two.PNG.hires")} {
		b, err := ioutil.ReadFile(filepath.Join(dir, file))
		require.NoError(t, err)
		assert.Len(t, b, 9000)
	}
	for _, file := range []string{".three.png.hires", filepath.Join(".hidden", "four.png.hires"), "notes.txt.hires"} {
		_, err := os.Stat(filepath.Join(dir, file))
		assert.True(t, os.IsNotExist(err), file)
	}

	assert.Error(t, c.ConvertDir(filepath.Join(dir, "one.png"), cfg))
	assert.Error(t, c.ConvertDir(filepath.Join(dir, "missing"), cfg))
}

func TestConvertFileSize(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "in.png"), filepath.Join(dir, "out.ham")
	writePNG(t, in, 64, 40)

	c := newConverter(t)
	cfg := DefaultConfig(FormatHAM)
	cfg.Quantizer = QuantizeUniform
	cfg.Size = image.Pt(640, 512)

	require.NoError(t, c.ConvertFile(in, out, cfg))
	b, err := ioutil.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, b, 640/16*512*8*2)

	cfg.Size = image.Pt(320, 512)
	require.NoError(t, c.ConvertFile(in, out, cfg))
	b, err = ioutil.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, b, 320/16*512*8*2)

	cfg.Size = image.Pt(320, 200)
	assert.Equal(t, errUnknownSize, errors.Unwrap(c.ConvertFile(in, out, cfg)))

	hires := DefaultConfig(FormatHires)
	hires.Size = image.Pt(640, 512)
	assert.Error(t, c.ConvertFile(in, out, hires))
}

func TestNilLogger(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "in.png"), filepath.Join(dir, "out.bin")
	writePNG(t, in, 16, 16)

	c, err := New(filepath.Join(dir, "cache.db"), nil)
	require.NoError(t, err)
	defer c.Close()

	cfg := DefaultConfig(FormatHires)
	require.NoError(t, c.ConvertFile(in, out, cfg))
	// Cache hits are logged
	require.NoError(t, c.ConvertFile(in, out, cfg))
	require.NoError(t, c.ConvertDir(dir, cfg))
}

func TestConvertDirError(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 2*workers; i++ {
		writePNG(t, filepath.Join(dir, fmt.Sprintf("%02d.png", i)), 16+i, 16)
	}
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "bad.png"), []byte("not an image"), 0o644))

	c, err := New(filepath.Join(t.TempDir(), "cache.db"), nil)
	require.NoError(t, err)

	assert.Error(t, c.ConvertDir(dir, DefaultConfig(FormatMulticolor)))

	// Every worker has stopped so the cache is idle
	n, err := c.store.Length()
	require.NoError(t, err)
	assert.Equal(t, n, countOutputs(t, dir))
	require.NoError(t, c.Close())
}

func countOutputs(t *testing.T, dir string) int {
	matches, err := filepath.Glob(filepath.Join(dir, "*.multicolor"))
	require.NoError(t, err)
	return len(matches)
}
