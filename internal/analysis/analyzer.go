package analysis

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mathext/prng"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	DefaultResamples = 100
	DefaultConfLevel = 0.95
)

// SobolAnalyzer estimates first, total and optionally second order Sobol
// indices from outputs evaluated on a Saltelli design. SecondOrder must
// agree with the design it is given.
type SobolAnalyzer struct {
	SecondOrder bool

	// Resamples is the bootstrap resample count for confidence intervals.
	// Zero uses DefaultResamples, negative disables the bootstrap.
	Resamples int

	// ConfLevel is the confidence level of the reported half-widths. Zero
	// uses DefaultConfLevel.
	ConfLevel float64

	// Seed fixes the bootstrap resampling.
	Seed *uint64

	Logger *slog.Logger
}

// saltelliBlocks are the model outputs separated by design block, one value
// per base point.
type saltelliBlocks struct {
	a, b   []float64
	ab, ba [][]float64
}

// Analyze decomposes the variance of outputs, which must be row-aligned with
// design.Samples.
func (an *SobolAnalyzer) Analyze(problem *Problem, design *Design, outputs []float64) (*Indices, error) {
	if err := problem.Validate(); err != nil {
		return nil, err
	}
	if err := an.checkDesign(problem, design, outputs); err != nil {
		return nil, err
	}
	confLevel := an.ConfLevel
	if confLevel == 0 {
		confLevel = DefaultConfLevel
	}
	if confLevel <= 0 || confLevel >= 1 {
		return nil, fmt.Errorf("confidence level %g outside (0, 1)", confLevel)
	}
	logger := an.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mean, std := stat.PopMeanStdDev(outputs, nil)
	if std == 0 || math.IsNaN(std) {
		return nil, fmt.Errorf("%w (mean %g)", ErrConstantOutput, mean)
	}
	normalized := make([]float64, len(outputs))
	for i, y := range outputs {
		normalized[i] = (y - mean) / std
	}

	d := problem.NumVars()
	blocks := separateBlocks(normalized, d, an.SecondOrder)

	ix := NewIndices(problem.Names)
	for j := 0; j < d; j++ {
		ix.S1[j] = firstOrder(blocks.a, blocks.ab[j], blocks.b)
		ix.ST[j] = totalOrder(blocks.a, blocks.ab[j], blocks.b)
	}
	if an.SecondOrder {
		ix.S2 = nanMatrix(d)
		for j := 0; j < d; j++ {
			for k := j + 1; k < d; k++ {
				ix.S2[j][k] = secondOrder(blocks.a, blocks.ab[j], blocks.ab[k], blocks.ba[j], blocks.b)
			}
		}
	}

	resamples := an.Resamples
	if resamples == 0 {
		resamples = DefaultResamples
	}
	if resamples > 1 {
		an.bootstrap(ix, blocks, resamples, confLevel)
	}

	logger.Debug("sobol indices estimated",
		"base_samples", len(blocks.a),
		"second_order", an.SecondOrder,
		"resamples", resamples,
	)
	return ix, nil
}

func (an *SobolAnalyzer) checkDesign(problem *Problem, design *Design, outputs []float64) error {
	if design == nil || design.Samples == nil {
		return &MismatchError{Reason: "no design supplied"}
	}
	if design.Family != FamilySaltelli {
		return &MismatchError{Reason: fmt.Sprintf("design family %q cannot be decomposed by the Sobol analyzer", design.Family)}
	}
	if design.SecondOrder != an.SecondOrder {
		return &MismatchError{Reason: fmt.Sprintf("design second order %t, analyzer second order %t", design.SecondOrder, an.SecondOrder)}
	}
	if _, cols := design.Samples.Dims(); cols != problem.NumVars() {
		return &MismatchError{Reason: fmt.Sprintf("design has %d columns, problem has %d parameters", cols, problem.NumVars())}
	}
	step := design.Step(problem.NumVars())
	if len(outputs) == 0 || len(outputs)%step != 0 {
		return &MismatchError{Reason: fmt.Sprintf("%d outputs is not a multiple of %d rows per base point", len(outputs), step)}
	}
	if len(outputs) != design.Rows() {
		return &MismatchError{Reason: fmt.Sprintf("%d outputs for %d design rows", len(outputs), design.Rows())}
	}
	return nil
}

// separateBlocks splits row-ordered outputs into A, AB_j, BA_j and B blocks.
func separateBlocks(y []float64, d int, secondOrder bool) saltelliBlocks {
	step := RowsPerBasePoint(d, secondOrder)
	n := len(y) / step
	blocks := saltelliBlocks{
		a:  make([]float64, n),
		b:  make([]float64, n),
		ab: make([][]float64, d),
	}
	for j := range blocks.ab {
		blocks.ab[j] = make([]float64, n)
	}
	if secondOrder {
		blocks.ba = make([][]float64, d)
		for j := range blocks.ba {
			blocks.ba[j] = make([]float64, n)
		}
	}
	for i := 0; i < n; i++ {
		r := i * step
		blocks.a[i] = y[r]
		blocks.b[i] = y[r+step-1]
		for j := 0; j < d; j++ {
			blocks.ab[j][i] = y[r+1+j]
			if secondOrder {
				blocks.ba[j][i] = y[r+1+d+j]
			}
		}
	}
	return blocks
}

// bootstrap fills the confidence half-widths: the standard deviation of the
// estimates over resampled base points scaled by the normal quantile.
func (an *SobolAnalyzer) bootstrap(ix *Indices, blocks saltelliBlocks, resamples int, confLevel float64) {
	d := len(ix.Names)
	n := len(blocks.a)
	z := distuv.UnitNormal.Quantile(0.5 + confLevel/2)

	src := prng.NewMT19937_64()
	if an.Seed != nil {
		src.Seed(*an.Seed)
	} else {
		src.Seed(uint64(time.Now().UnixNano()))
	}
	rnd := rand.New(src)

	s1 := make([][]float64, d)
	st := make([][]float64, d)
	for j := 0; j < d; j++ {
		s1[j] = make([]float64, resamples)
		st[j] = make([]float64, resamples)
	}
	var s2 [][][]float64
	if an.SecondOrder {
		s2 = make([][][]float64, d)
		for j := range s2 {
			s2[j] = make([][]float64, d)
			for k := j + 1; k < d; k++ {
				s2[j][k] = make([]float64, resamples)
			}
		}
	}

	idx := make([]int, n)
	ra := make([]float64, n)
	rb := make([]float64, n)
	rab := make([][]float64, d)
	rba := make([][]float64, d)
	for j := 0; j < d; j++ {
		rab[j] = make([]float64, n)
		rba[j] = make([]float64, n)
	}
	for r := 0; r < resamples; r++ {
		for i := range idx {
			idx[i] = rnd.IntN(n)
		}
		gather(ra, blocks.a, idx)
		gather(rb, blocks.b, idx)
		for j := 0; j < d; j++ {
			gather(rab[j], blocks.ab[j], idx)
			if an.SecondOrder {
				gather(rba[j], blocks.ba[j], idx)
			}
		}
		for j := 0; j < d; j++ {
			s1[j][r] = firstOrder(ra, rab[j], rb)
			st[j][r] = totalOrder(ra, rab[j], rb)
			if an.SecondOrder {
				for k := j + 1; k < d; k++ {
					s2[j][k][r] = secondOrder(ra, rab[j], rab[k], rba[j], rb)
				}
			}
		}
	}

	ix.ConfLevel = confLevel
	ix.S1Conf = make([]float64, d)
	ix.STConf = make([]float64, d)
	for j := 0; j < d; j++ {
		ix.S1Conf[j] = z * stat.StdDev(s1[j], nil)
		ix.STConf[j] = z * stat.StdDev(st[j], nil)
	}
	if an.SecondOrder {
		ix.S2Conf = nanMatrix(d)
		for j := 0; j < d; j++ {
			for k := j + 1; k < d; k++ {
				ix.S2Conf[j][k] = z * stat.StdDev(s2[j][k], nil)
			}
		}
	}
}

func firstOrder(a, ab, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += b[i] * (ab[i] - a[i])
	}
	return sum / float64(len(a)) / pooledVariance(a, b)
}

func totalOrder(a, ab, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - ab[i]
		sum += diff * diff
	}
	return 0.5 * sum / float64(len(a)) / pooledVariance(a, b)
}

func secondOrder(a, abj, abk, baj, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += baj[i]*abk[i] - a[i]*b[i]
	}
	vjk := sum / float64(len(a)) / pooledVariance(a, b)
	return vjk - firstOrder(a, abj, b) - firstOrder(a, abk, b)
}

// pooledVariance is the population variance of A and B taken together.
func pooledVariance(a, b []float64) float64 {
	pooled := make([]float64, 0, len(a)+len(b))
	pooled = append(pooled, a...)
	pooled = append(pooled, b...)
	_, v := stat.PopMeanVariance(pooled, nil)
	return v
}

func gather(dst, src []float64, idx []int) {
	for i, k := range idx {
		dst[i] = src[k]
	}
}

func nanMatrix(d int) [][]float64 {
	m := make([][]float64, d)
	for j := range m {
		m[j] = make([]float64, d)
		for k := range m[j] {
			m[j][k] = math.NaN()
		}
	}
	return m
}
