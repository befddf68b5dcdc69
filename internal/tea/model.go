// Package tea holds the techno-economic objective evaluated on every row of
// a sensitivity design.
package tea

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// NumInputs is the width of a parameter vector:
// (conversion, selectivity, feed ratio).
const NumInputs = 3

// ErrRowWidth indicates a sample row that is not a (conversion,
// selectivity, feed ratio) vector.
var ErrRowWidth = errors.New("tea: sample rows must have 3 columns")

// Coefficients are the constants of the ODHE objective. The zero value is
// not useful; start from ReferenceCoefficients.
type Coefficients struct {
	R0 float64 `json:"r0" yaml:"r0" validate:"gt=0"` // revenue per unit conversion x selectivity
	A  float64 `json:"a" yaml:"a" validate:"gte=0"`  // opex weight on unconverted feed
	B  float64 `json:"b" yaml:"b" validate:"gte=0"`  // opex weight on non-selective conversion
	C  float64 `json:"c" yaml:"c" validate:"gte=0"`  // capex per unit feed ratio
}

// ReferenceCoefficients returns the reference study constants.
func ReferenceCoefficients() Coefficients {
	return Coefficients{R0: 1000, A: 200, B: 100, C: 500}
}

// Revenue is R0 * conversion * selectivity.
func (c Coefficients) Revenue(conversion, selectivity float64) float64 {
	return c.R0 * conversion * selectivity
}

// Opex is A*(1-conversion) + B*(1-selectivity).
func (c Coefficients) Opex(conversion, selectivity float64) float64 {
	return c.A*(1-conversion) + c.B*(1-selectivity)
}

// Capex is C * feedRatio.
func (c Coefficients) Capex(feedRatio float64) float64 {
	return c.C * feedRatio
}

// Evaluate returns revenue - opex - capex. It is pure.
func (c Coefficients) Evaluate(conversion, selectivity, feedRatio float64) float64 {
	return c.Revenue(conversion, selectivity) - c.Opex(conversion, selectivity) - c.Capex(feedRatio)
}

// EvaluateVector evaluates a (conversion, selectivity, feed ratio) vector.
func (c Coefficients) EvaluateVector(x []float64) (float64, error) {
	if len(x) != NumInputs {
		return 0, fmt.Errorf("%w: got %d", ErrRowWidth, len(x))
	}
	return c.Evaluate(x[0], x[1], x[2]), nil
}

// blockSize is the number of rows a parallel worker evaluates between
// context checks.
const blockSize = 512

// EvaluateDesign applies the objective to every row of samples and returns
// the outputs in row order. With workers <= 1 rows are evaluated
// sequentially; otherwise blocks of rows are evaluated concurrently, each
// result written to its own index.
func EvaluateDesign(ctx context.Context, c Coefficients, samples mat.Matrix, workers int) ([]float64, error) {
	rows, cols := samples.Dims()
	if cols != NumInputs {
		return nil, fmt.Errorf("%w: got %d", ErrRowWidth, cols)
	}
	out := make([]float64, rows)

	evalBlock := func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = c.Evaluate(samples.At(i, 0), samples.At(i, 1), samples.At(i, 2))
		}
	}

	if workers <= 1 {
		for start := 0; start < rows; start += blockSize {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			evalBlock(start, min(start+blockSize, rows))
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < rows; start += blockSize {
		start, end := start, min(start+blockSize, rows)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			evalBlock(start, end)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
