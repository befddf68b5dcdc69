package analysis

import (
	"fmt"
	"log/slog"
	"math/bits"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext/prng"
)

// FamilySaltelli names the Sobol/Saltelli cross-sampling family. Designs
// from this family can only be decomposed by SobolAnalyzer.
const FamilySaltelli = "saltelli"

// Design is the Sample Matrix together with the structure an analyzer needs
// to decompose the outputs evaluated on it.
type Design struct {
	Family      string
	N           int  // base sample count
	SecondOrder bool // whether BA blocks are interleaved
	Samples     *mat.Dense
}

// Rows returns the number of sample rows.
func (d *Design) Rows() int {
	if d == nil || d.Samples == nil {
		return 0
	}
	r, _ := d.Samples.Dims()
	return r
}

// Step returns the number of rows generated per base point.
func (d *Design) Step(numVars int) int {
	return RowsPerBasePoint(numVars, d.SecondOrder)
}

// RowsPerBasePoint is D+2 without second order indices and 2D+2 with them.
func RowsPerBasePoint(numVars int, secondOrder bool) int {
	if secondOrder {
		return 2*numVars + 2
	}
	return numVars + 2
}

// Saltelli generates Sobol/Saltelli designs.
type Saltelli struct {
	SecondOrder bool

	// Skip is the number of leading sequence points discarded. Zero means
	// the smallest power of two not below N.
	Skip uint64

	// Scramble applies a random digital shift drawn from Seed.
	Scramble bool

	// Seed fixes the shift. Nil seeds from the clock, so scrambled runs
	// without a seed are not reproducible.
	Seed *uint64

	Logger *slog.Logger
}

// Sample builds the cross-sampling design for n base points. The returned
// matrix has n*(D+2) rows, or n*(2D+2) with second order enabled.
func (s *Saltelli) Sample(problem *Problem, n int) (*Design, error) {
	if err := problem.Validate(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSampleSize, n)
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if n&(n-1) != 0 {
		logger.Warn("sample size is not a power of two; Sobol balance properties are weakened", "n", n)
	}

	d := problem.NumVars()
	seq, err := NewSobolSequence(2 * d)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProblem, err)
	}
	if s.Scramble {
		seq.SetShift(s.shift(2 * d))
	}
	skip := s.Skip
	if skip == 0 {
		skip = nextPowerOfTwo(uint64(n))
	}
	seq.Skip(skip)

	step := RowsPerBasePoint(d, s.SecondOrder)
	samples := mat.NewDense(n*step, d, nil)
	base := make([]float64, 2*d)
	row := make([]float64, d)
	for i := 0; i < n; i++ {
		seq.Next(base)
		a, b := base[:d], base[d:]
		r := i * step

		samples.SetRow(r, a)
		r++
		// AB_k: A with column k taken from B.
		for k := 0; k < d; k++ {
			copy(row, a)
			row[k] = b[k]
			samples.SetRow(r, row)
			r++
		}
		if s.SecondOrder {
			// BA_k: B with column k taken from A.
			for k := 0; k < d; k++ {
				copy(row, b)
				row[k] = a[k]
				samples.SetRow(r, row)
				r++
			}
		}
		samples.SetRow(r, b)
	}
	scaleToBounds(samples, problem.Bounds)

	logger.Debug("saltelli design generated",
		"base_samples", n,
		"rows", n*step,
		"second_order", s.SecondOrder,
		"skip", skip,
		"scrambled", s.Scramble,
	)
	return &Design{
		Family:      FamilySaltelli,
		N:           n,
		SecondOrder: s.SecondOrder,
		Samples:     samples,
	}, nil
}

func (s *Saltelli) shift(dim int) []uint32 {
	src := prng.NewMT19937_64()
	if s.Seed != nil {
		src.Seed(*s.Seed)
	} else {
		src.Seed(uint64(time.Now().UnixNano()))
	}
	rnd := rand.New(src)
	shift := make([]uint32, dim)
	for j := range shift {
		shift[j] = rnd.Uint32()
	}
	return shift
}

// scaleToBounds maps unit-cube samples onto the parameter bounds in place.
func scaleToBounds(samples *mat.Dense, bounds []Bound) {
	rows, cols := samples.Dims()
	for j := 0; j < cols; j++ {
		lo, width := bounds[j].Low, bounds[j].Width()
		for i := 0; i < rows; i++ {
			samples.Set(i, j, lo+samples.At(i, j)*width)
		}
	}
}

func nextPowerOfTwo(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len64(n-1)
}
