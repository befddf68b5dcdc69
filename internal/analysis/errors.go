package analysis

import (
	"errors"
	"fmt"
)

// Sentinel errors for the sensitivity workflow. Every failure is fatal to
// the run it occurs in.
var (
	// ErrInvalidProblem indicates a malformed parameter-space definition.
	ErrInvalidProblem = errors.New("analysis: invalid problem definition")

	// ErrInvalidSampleSize indicates a non-positive base sample count.
	ErrInvalidSampleSize = errors.New("analysis: sample size must be a positive integer")

	// ErrDesignMismatch indicates the analyzer was handed outputs from a
	// design it cannot decompose (different second-order setting, different
	// sampling family, or misaligned row count).
	ErrDesignMismatch = errors.New("analysis: sampler and analyzer designs do not match")

	// ErrConstantOutput indicates the model output has zero variance.
	ErrConstantOutput = errors.New("analysis: model output has zero variance")
)

// ProblemError carries the offending field of a rejected problem definition.
type ProblemError struct {
	Field  string
	Reason string
}

func (e *ProblemError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidProblem, e.Field, e.Reason)
}

func (e *ProblemError) Unwrap() error {
	return ErrInvalidProblem
}

// MismatchError describes why a design and an analyzer cannot be paired.
type MismatchError struct {
	Reason string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDesignMismatch, e.Reason)
}

func (e *MismatchError) Unwrap() error {
	return ErrDesignMismatch
}
