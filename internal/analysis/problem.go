package analysis

import (
	"fmt"
	"math"
	"strings"
)

// Bound is the closed interval a parameter is sampled from.
type Bound struct {
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// Width returns High - Low.
func (b Bound) Width() float64 {
	return b.High - b.Low
}

// Contains reports whether v lies within the bound, inclusive.
func (b Bound) Contains(v float64) bool {
	return v >= b.Low && v <= b.High
}

// Problem declares the parameter space of a sensitivity study. It is
// immutable once built by NewProblem; callers must not modify the slices.
type Problem struct {
	Names  []string
	Bounds []Bound
}

// NewProblem validates names and bounds and returns the problem definition.
// The slices are copied.
func NewProblem(names []string, bounds []Bound) (*Problem, error) {
	p := &Problem{
		Names:  append([]string(nil), names...),
		Bounds: append([]Bound(nil), bounds...),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ReferenceProblem is the ODHE study: conversion, selectivity and the
// ethane to oxygen feed ratio.
func ReferenceProblem() *Problem {
	return &Problem{
		Names: []string{"conversion", "selectivity", "C2H6_O2_ratio"},
		Bounds: []Bound{
			{Low: 0.30, High: 0.80},
			{Low: 0.60, High: 0.95},
			{Low: 1.0, High: 3.0},
		},
	}
}

// NumVars returns the parameter count.
func (p *Problem) NumVars() int {
	return len(p.Names)
}

// Validate checks the problem definition. Problems built through
// NewProblem are already valid; Validate exists for callers that assemble a
// Problem literal, such as configuration loading.
func (p *Problem) Validate() error {
	if p == nil {
		return &ProblemError{Field: "problem", Reason: "nil"}
	}
	if len(p.Names) == 0 {
		return &ProblemError{Field: "names", Reason: "at least one parameter is required"}
	}
	if len(p.Names) != len(p.Bounds) {
		return &ProblemError{
			Field:  "bounds",
			Reason: fmt.Sprintf("%d names but %d bounds", len(p.Names), len(p.Bounds)),
		}
	}
	// Each Saltelli base point needs 2D Sobol dimensions.
	if 2*len(p.Names) > MaxSobolDimensions {
		return &ProblemError{
			Field:  "names",
			Reason: fmt.Sprintf("%d parameters exceed the supported maximum of %d", len(p.Names), MaxSobolDimensions/2),
		}
	}
	seen := make(map[string]bool, len(p.Names))
	for i, name := range p.Names {
		if strings.TrimSpace(name) == "" {
			return &ProblemError{Field: fmt.Sprintf("names[%d]", i), Reason: "empty name"}
		}
		if seen[name] {
			return &ProblemError{Field: fmt.Sprintf("names[%d]", i), Reason: fmt.Sprintf("duplicate name %q", name)}
		}
		seen[name] = true
	}
	for i, b := range p.Bounds {
		if math.IsNaN(b.Low) || math.IsNaN(b.High) || math.IsInf(b.Low, 0) || math.IsInf(b.High, 0) {
			return &ProblemError{Field: fmt.Sprintf("bounds[%d]", i), Reason: "bounds must be finite"}
		}
		if b.Low >= b.High {
			return &ProblemError{
				Field:  fmt.Sprintf("bounds[%d]", i),
				Reason: fmt.Sprintf("low %g must be below high %g for %q", b.Low, b.High, p.Names[i]),
			}
		}
	}
	return nil
}
