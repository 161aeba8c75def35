/*
Package glyph matches 8 by 8 binary tiles against a 256 character charset
using a pretrained feed-forward network.

The network is never trained here, only evaluated. Weights are read from a
small binary format:

	"RPNN"                   magic
	uint32                   number of layers
	per layer:
	  uint32, uint32         inputs, outputs
	  outputs*inputs float32 weights, one row per output
	  outputs float32        biases

All values are little-endian. Every layer uses a sigmoid activation.
*/
package glyph

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"math"
)

const (
	// Inputs is the size of the binary tile vector.
	Inputs = 64
	// Outputs is the number of characters in a charset.
	Outputs = 256

	magic     = "RPNN"
	maxLayers = 8
	maxWidth  = 4096
)

var (
	errBadMagic  = errors.New("glyph: not a network file")
	errBadShape  = errors.New("glyph: invalid network shape")
	errTrailing  = errors.New("glyph: trailing network data")
	errNoNetwork = errors.New("glyph: no network loaded")
)

// Layer is one fully connected layer.
type Layer struct {
	In, Out int
	Weights []float32
	Biases  []float32
}

// Network is a feed-forward network taking Inputs values and producing
// Outputs activations. It implements the encoding.BinaryMarshaler and
// encoding.BinaryUnmarshaler interfaces.
type Network struct {
	Layers []Layer
}

// NewNetwork returns a zeroed network with the given layer widths, for
// example 64, 128, 256.
func NewNetwork(widths ...int) (*Network, error) {
	if len(widths) < 2 || widths[0] != Inputs || widths[len(widths)-1] != Outputs {
		return nil, errBadShape
	}
	n := new(Network)
	for i := 1; i < len(widths); i++ {
		in, out := widths[i-1], widths[i]
		if out < 1 || out > maxWidth {
			return nil, errBadShape
		}
		n.Layers = append(n.Layers, Layer{
			In:      in,
			Out:     out,
			Weights: make([]float32, in*out),
			Biases:  make([]float32, out),
		})
	}
	return n, nil
}

func (n *Network) validate() error {
	if len(n.Layers) == 0 || len(n.Layers) > maxLayers {
		return errBadShape
	}
	in := Inputs
	for _, l := range n.Layers {
		if l.In != in || l.Out < 1 || l.Out > maxWidth || len(l.Weights) != l.In*l.Out || len(l.Biases) != l.Out {
			return errBadShape
		}
		in = l.Out
	}
	if in != Outputs {
		return errBadShape
	}
	return nil
}

func sigmoid(x float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(x))))
}

// Forward returns the output activations for input.
func (n *Network) Forward(input [Inputs]float32) []float32 {
	v := input[:]
	for _, l := range n.Layers {
		out := make([]float32, l.Out)
		for o := 0; o < l.Out; o++ {
			sum := l.Biases[o]
			row := l.Weights[o*l.In : (o+1)*l.In]
			for i, w := range row {
				sum += w * v[i]
			}
			out[o] = sigmoid(sum)
		}
		v = out
	}
	return v
}

// Classify returns the index of the strongest output, the first one wins
// a tie.
func (n *Network) Classify(input [Inputs]float32) int {
	result := n.Forward(input)
	code, value := 0, result[0]
	for i := 1; i < len(result); i++ {
		if result[i] > value {
			code, value = i, result[i]
		}
	}
	return code
}

// MarshalBinary encodes the network into binary form and returns the
// result.
func (n *Network) MarshalBinary() ([]byte, error) {
	if err := n.validate(); err != nil {
		return nil, err
	}

	b := new(bytes.Buffer)
	b.WriteString(magic)

	if err := binary.Write(b, binary.LittleEndian, uint32(len(n.Layers))); err != nil {
		return nil, err
	}
	for _, l := range n.Layers {
		for _, v := range []interface{}{uint32(l.In), uint32(l.Out), l.Weights, l.Biases} {
			if err := binary.Write(b, binary.LittleEndian, v); err != nil {
				return nil, err
			}
		}
	}

	return b.Bytes(), nil
}

// UnmarshalBinary decodes the network from binary form.
func (n *Network) UnmarshalBinary(b []byte) error {
	r := bytes.NewReader(b)

	var tmp [len(magic)]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil || string(tmp[:]) != magic {
		return errBadMagic
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return err
	}
	if count == 0 || count > maxLayers {
		return errBadShape
	}

	layers := make([]Layer, count)
	for i := range layers {
		var shape [2]uint32
		if err := binary.Read(r, binary.LittleEndian, &shape); err != nil {
			return err
		}
		if shape[0] == 0 || shape[0] > maxWidth || shape[1] == 0 || shape[1] > maxWidth {
			return errBadShape
		}

		l := Layer{
			In:      int(shape[0]),
			Out:     int(shape[1]),
			Weights: make([]float32, shape[0]*shape[1]),
			Biases:  make([]float32, shape[1]),
		}
		if err := binary.Read(r, binary.LittleEndian, l.Weights); err != nil {
			return err
		}
		if err := binary.Read(r, binary.LittleEndian, l.Biases); err != nil {
			return err
		}
		layers[i] = l
	}

	if r.Len() != 0 {
		return errTrailing
	}

	dup := Network{Layers: layers}
	if err := dup.validate(); err != nil {
		return err
	}
	n.Layers = layers
	return nil
}

// LoadNetwork reads a network from r.
func LoadNetwork(r io.Reader) (*Network, error) {
	if r == nil {
		return nil, errNoNetwork
	}
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("glyph: reading network: %w", err)
	}
	n := new(Network)
	if err := n.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("glyph: loading network: %w", err)
	}
	return n, nil
}
