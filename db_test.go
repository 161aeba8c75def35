package retropic

import (
	"image"
	"path/filepath"
	"testing"

	"github.com/paich64/retropic/c64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	b, err := s.Find("0000000000000000")
	require.NoError(t, err)
	assert.Nil(t, b)

	data := make([]byte, 9000)
	for i := range data {
		data[i] = byte(i % 7)
	}
	require.NoError(t, s.Add("0123456789ABCDEF", FormatHires, data))
	// Replacing keeps a single row
	require.NoError(t, s.Add("0123456789ABCDEF", FormatHires, data))

	b, err = s.Find("0123456789ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, data, b)

	n, err := s.Length()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestKey(t *testing.T) {
	m := noise(1, c64.Width, c64.Height)
	base := DefaultConfig(FormatHires)

	key, err := Key(m, base)
	require.NoError(t, err)
	assert.Len(t, key, 16)

	same, err := Key(m.Clone(), base)
	require.NoError(t, err)
	assert.Equal(t, key, same)

	n, cs := testGlyphs(t)

	tables := []struct {
		name   string
		modify func(*Config)
	}{
		{"format", func(c *Config) { c.Format = FormatMulticolor }},
		{"dither", func(c *Config) { c.Dither = false }},
		{"kernel", func(c *Config) { c.Algorithm++ }},
		{"metric", func(c *Config) { c.Mode-- }},
		{"sampling", func(c *Config) { c.Sampling = c64.SampleChecker }},
		{"merge", func(c *Config) { c.Merge = c64.MergeBrightest }},
		{"quantizer", func(c *Config) { c.Quantizer = QuantizeUniform }},
		{"epochs", func(c *Config) { c.Epochs++ }},
		{"seed", func(c *Config) { c.Seed = 7 }},
		{"network", func(c *Config) { c.Format, c.Network = FormatPetscii, n }},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			cfg := base
			table.modify(&cfg)
			k, err := Key(m, cfg)
			require.NoError(t, err)
			assert.NotEqual(t, key, k)
		})
	}

	petscii := DefaultConfig(FormatPetscii)
	petscii.Network, petscii.Charset = n, cs
	k1, err := Key(m, petscii)
	require.NoError(t, err)
	cs2 := *cs
	cs2[0] ^= 0xff
	petscii.Charset = &cs2
	k2, err := Key(m, petscii)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)

	// Glyph data is ignored by the other formats
	withGlyphs := base
	withGlyphs.Network, withGlyphs.Charset = n, cs
	k3, err := Key(m, withGlyphs)
	require.NoError(t, err)
	assert.Equal(t, key, k3)

	ham := DefaultConfig(FormatHAM)
	k5, err := Key(m, ham)
	require.NoError(t, err)
	ham.Size = FormatHAM.Size()
	k6, err := Key(m, ham)
	require.NoError(t, err)
	assert.Equal(t, k5, k6)
	ham.Size = image.Pt(640, 512)
	k7, err := Key(m, ham)
	require.NoError(t, err)
	assert.NotEqual(t, k5, k7)

	ham.Size = image.Pt(1, 1)
	_, err = Key(m, ham)
	assert.Error(t, err)

	m.Pix[0] ^= 1
	k4, err := Key(m, base)
	require.NoError(t, err)
	assert.NotEqual(t, key, k4)
}
