package analysis

import (
	"math"
	"sort"
)

// Index holds the first and total order index of one parameter.
type Index struct {
	FirstOrder float64 `json:"first_order"`
	TotalOrder float64 `json:"total_order"`
}

// Indices holds the estimates for every parameter, in problem order.
type Indices struct {
	Names  []string
	S1     []float64
	ST     []float64
	S1Conf []float64 // bootstrap half-width at ConfLevel, nil when not estimated
	STConf []float64
	// S2[j][k] for j < k is the second order index of the pair; other
	// entries are NaN. Nil unless second order indices were requested.
	S2        [][]float64
	S2Conf    [][]float64
	ConfLevel float64
}

// NewIndices allocates indices for the given names.
func NewIndices(names []string) *Indices {
	n := len(names)
	return &Indices{
		Names: append([]string(nil), names...),
		S1:    make([]float64, n),
		ST:    make([]float64, n),
	}
}

// Map returns the indices keyed by parameter name.
func (ix *Indices) Map() map[string]Index {
	out := make(map[string]Index, len(ix.Names))
	for i, name := range ix.Names {
		out[name] = Index{FirstOrder: ix.S1[i], TotalOrder: ix.ST[i]}
	}
	return out
}

// HasConfidence reports whether bootstrap half-widths are present.
func (ix *Indices) HasConfidence() bool {
	return len(ix.S1Conf) == len(ix.Names) && len(ix.STConf) == len(ix.Names)
}

// RankedParameter is used for ordering parameters by an index.
type RankedParameter struct {
	Name  string
	Value float64
}

// RankByTotalOrder returns parameters sorted by total order index, largest
// first. Ties keep problem order and NaN values sort last.
func (ix *Indices) RankByTotalOrder() []RankedParameter {
	ranked := make([]RankedParameter, len(ix.Names))
	for i, name := range ix.Names {
		ranked[i] = RankedParameter{Name: name, Value: ix.ST[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Value, ranked[j].Value
		if math.IsNaN(a) {
			return false
		}
		return math.IsNaN(b) || a > b
	})
	return ranked
}
