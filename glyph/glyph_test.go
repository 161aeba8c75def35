package glyph

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyFirstMaximum(t *testing.T) {
	n, err := NewNetwork(Inputs, Outputs)
	require.NoError(t, err)

	// Every output is sigmoid(0)
	var zero [Inputs]float32
	assert.Equal(t, 0, n.Classify(zero))

	n.Layers[0].Biases[9] = 1
	n.Layers[0].Biases[200] = 1
	assert.Equal(t, 9, n.Classify(zero))

	// Pixel 0 set points at character 7
	n.Layers[0].Weights[7*Inputs] = 10
	var in [Inputs]float32
	in[0] = 1
	assert.Equal(t, 7, n.Classify(in))
	assert.Equal(t, 9, n.Classify(zero))
}

func TestHiddenLayers(t *testing.T) {
	for _, widths := range [][]int{{64, 128, 256}, {64, 128, 128, 256}} {
		n, err := NewNetwork(widths...)
		require.NoError(t, err)
		assert.Len(t, n.Forward([Inputs]float32{}), Outputs)
	}

	_, err := NewNetwork(64, 128)
	assert.Error(t, err)
	_, err = NewNetwork(32, 256)
	assert.Error(t, err)
}

func TestNetworkRoundTrip(t *testing.T) {
	n, err := NewNetwork(64, 16, 256)
	require.NoError(t, err)
	for i := range n.Layers[0].Weights {
		n.Layers[0].Weights[i] = float32(i%7) - 3
	}
	for i := range n.Layers[1].Biases {
		n.Layers[1].Biases[i] = float32(i) / 256
	}

	b, err := n.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte("RPNN"), b[:4])

	loaded, err := LoadNetwork(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, n, loaded)

	var in [Inputs]float32
	for i := range in {
		in[i] = float32(i % 2)
	}
	assert.Equal(t, n.Classify(in), loaded.Classify(in))
}

func TestNetworkErrors(t *testing.T) {
	n, err := NewNetwork(64, 256)
	require.NoError(t, err)
	b, err := n.MarshalBinary()
	require.NoError(t, err)

	_, err = LoadNetwork(bytes.NewReader(b[:len(b)-1]))
	assert.Error(t, err)

	_, err = LoadNetwork(bytes.NewReader(append(b, 0)))
	assert.Error(t, err)

	_, err = LoadNetwork(bytes.NewReader([]byte("JUNKJUNKJUNK")))
	assert.Error(t, err)

	_, err = LoadNetwork(nil)
	assert.Error(t, err)

	_, err = (&Network{}).MarshalBinary()
	assert.Error(t, err)
}

func TestLoadCharset(t *testing.T) {
	raw := make([]byte, CharsetSize)
	raw[1*8+0] = 0x81
	raw[255*8+7] = 0x01

	c, err := LoadCharset(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.True(t, c.Pixel(1, 0, 0))
	assert.True(t, c.Pixel(1, 7, 0))
	assert.False(t, c.Pixel(1, 1, 0))
	assert.True(t, c.Pixel(255, 7, 7))
	assert.Equal(t, byte(0x81), c.Row(1, 0))

	prg, err := LoadCharset(bytes.NewReader(append([]byte{0x00, 0x30}, raw...)))
	require.NoError(t, err)
	assert.Equal(t, c, prg)

	_, err = LoadCharset(bytes.NewReader(raw[:100]))
	assert.Error(t, err)

	_, err = LoadCharset(nil)
	assert.Error(t, err)
}
