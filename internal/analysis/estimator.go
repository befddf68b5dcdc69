package analysis

// Sampler produces a design covering the problem's parameter space.
type Sampler interface {
	Sample(problem *Problem, n int) (*Design, error)
}

// Analyzer estimates sensitivity indices from outputs evaluated on a design,
// row for row. Implementations reject designs from a sampling family they
// cannot decompose.
type Analyzer interface {
	Analyze(problem *Problem, design *Design, outputs []float64) (*Indices, error)
}

var (
	_ Sampler  = (*Saltelli)(nil)
	_ Analyzer = (*SobolAnalyzer)(nil)
)
