package analysis

import (
	"fmt"
	"math/bits"
)

const (
	// sobolBits is the resolution of the generated coordinates.
	sobolBits = 32
	sobolNorm = 1.0 / (1 << sobolBits)
)

// MaxSobolDimensions is the number of tabulated Sobol dimensions.
const MaxSobolDimensions = 20

// directionParams are the Joe-Kuo primitive polynomial degree s, the
// polynomial coefficients a and the initial direction numbers m for
// dimensions 2..MaxSobolDimensions. Dimension 1 is the van der Corput
// sequence.
var directionParams = []struct {
	s int
	a uint32
	m []uint32
}{
	{1, 0, []uint32{1}},
	{2, 1, []uint32{1, 3}},
	{3, 1, []uint32{1, 3, 1}},
	{3, 2, []uint32{1, 1, 1}},
	{4, 1, []uint32{1, 1, 3, 3}},
	{4, 4, []uint32{1, 3, 5, 13}},
	{5, 2, []uint32{1, 1, 5, 5, 17}},
	{5, 4, []uint32{1, 1, 5, 5, 5}},
	{5, 7, []uint32{1, 1, 7, 11, 19}},
	{5, 11, []uint32{1, 1, 5, 1, 1}},
	{5, 13, []uint32{1, 1, 1, 3, 11}},
	{5, 14, []uint32{1, 3, 5, 5, 31}},
	{6, 1, []uint32{1, 3, 3, 9, 7, 49}},
	{6, 13, []uint32{1, 1, 1, 15, 21, 21}},
	{6, 16, []uint32{1, 3, 1, 13, 27, 49}},
	{6, 19, []uint32{1, 1, 1, 15, 7, 5}},
	{6, 22, []uint32{1, 3, 1, 15, 13, 25}},
	{6, 25, []uint32{1, 1, 5, 5, 19, 61}},
	{7, 1, []uint32{1, 3, 7, 11, 23, 15, 103}},
}

// SobolSequence generates points of the unscrambled Sobol sequence using
// the Gray-code construction. The first point is the origin.
type SobolSequence struct {
	dim       int
	direction [][sobolBits]uint32
	shift     []uint32
	state     []uint32
	index     uint64
}

// NewSobolSequence returns a generator for dim dimensions.
func NewSobolSequence(dim int) (*SobolSequence, error) {
	if dim < 1 || dim > MaxSobolDimensions {
		return nil, fmt.Errorf("sobol dimension %d outside [1, %d]", dim, MaxSobolDimensions)
	}
	seq := &SobolSequence{
		dim:       dim,
		direction: make([][sobolBits]uint32, dim),
		shift:     make([]uint32, dim),
		state:     make([]uint32, dim),
	}
	for k := 0; k < sobolBits; k++ {
		seq.direction[0][k] = 1 << (sobolBits - 1 - k)
	}
	for j := 1; j < dim; j++ {
		dp := directionParams[j-1]
		v := &seq.direction[j]
		for k := 0; k < dp.s && k < sobolBits; k++ {
			v[k] = dp.m[k] << (sobolBits - 1 - k)
		}
		for k := dp.s; k < sobolBits; k++ {
			v[k] = v[k-dp.s] ^ (v[k-dp.s] >> dp.s)
			for l := 1; l < dp.s; l++ {
				if (dp.a>>(dp.s-1-l))&1 == 1 {
					v[k] ^= v[k-l]
				}
			}
		}
	}
	return seq, nil
}

// Dim returns the number of dimensions.
func (s *SobolSequence) Dim() int {
	return s.dim
}

// SetShift applies a digital shift: every generated coordinate is XORed with
// the per-dimension mask. A random shift keeps the net structure of the
// sequence while randomizing it.
func (s *SobolSequence) SetShift(shift []uint32) {
	copy(s.shift, shift)
}

// Skip advances the generator by n points.
func (s *SobolSequence) Skip(n uint64) {
	for i := uint64(0); i < n; i++ {
		s.advance()
	}
}

// Next writes the next point into dst, which must have length Dim, and
// returns it. Coordinates lie in [0, 1).
func (s *SobolSequence) Next(dst []float64) []float64 {
	if dst == nil {
		dst = make([]float64, s.dim)
	}
	for j := 0; j < s.dim; j++ {
		dst[j] = float64(s.state[j]^s.shift[j]) * sobolNorm
	}
	s.advance()
	return dst
}

// advance moves state from point index to index+1 by flipping the
// direction number at the position of the lowest zero bit of index.
func (s *SobolSequence) advance() {
	c := bits.TrailingZeros64(^s.index)
	s.index++
	if c >= sobolBits {
		// Past 2^32 points the sequence repeats.
		return
	}
	for j := 0; j < s.dim; j++ {
		s.state[j] ^= s.direction[j][c]
	}
}
