// Package study runs the sensitivity pipeline end to end: problem, design,
// model evaluation, index estimation and report.
package study

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/user/odhe_tea_go/internal/analysis"
	"github.com/user/odhe_tea_go/internal/config"
	"github.com/user/odhe_tea_go/internal/report"
	"github.com/user/odhe_tea_go/internal/tea"
)

// Stage names a step of the pipeline.
type Stage string

const (
	StageProblem  Stage = "problem"
	StageSample   Stage = "sample"
	StageEvaluate Stage = "evaluate"
	StageAnalyze  Stage = "analyze"
	StageReport   Stage = "report"
)

// Stages lists the pipeline steps in execution order.
var Stages = []Stage{StageProblem, StageSample, StageEvaluate, StageAnalyze, StageReport}

// Progress receives a human-readable message as each stage finishes.
type Progress func(stage Stage, message string)

// Options tune a run without touching the configuration.
type Options struct {
	Logger   *slog.Logger
	Progress Progress
	// SkipReport stops after the analyzer; nothing is written to disk.
	SkipReport bool
}

// Summary describes a finished run.
type Summary struct {
	RunID     string                  `json:"run_id"`
	Started   time.Time               `json:"started"`
	Rows      int                     `json:"rows"`
	Indices   *analysis.Indices       `json:"-"`
	Artifacts report.Artifacts        `json:"artifacts"`
	Durations map[Stage]time.Duration `json:"durations"`
}

// Elapsed is the sum of the stage durations.
func (s *Summary) Elapsed() time.Duration {
	var total time.Duration
	for _, d := range s.Durations {
		total += d
	}
	return total
}

type runner struct {
	logger   *slog.Logger
	progress Progress
	summary  *Summary
}

func (r *runner) stage(stage Stage, fn func() (string, error)) error {
	start := time.Now()
	msg, err := fn()
	elapsed := time.Since(start)
	r.summary.Durations[stage] = elapsed
	if err != nil {
		r.logger.Error("stage failed", "stage", stage, "error", err)
		return fmt.Errorf("%s: %w", stage, err)
	}
	r.logger.Info(msg, "stage", stage, "elapsed", elapsed)
	if r.progress != nil {
		r.progress(stage, msg)
	}
	return nil
}

// Run executes one sensitivity study. Any stage failure aborts the run and
// no partial outputs are left behind.
func Run(ctx context.Context, cfg config.Config, opts Options) (*Summary, error) {
	runID := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run_id", runID)

	summary := &Summary{
		RunID:     runID,
		Started:   time.Now(),
		Durations: make(map[Stage]time.Duration, len(Stages)),
	}
	r := &runner{logger: logger, progress: opts.Progress, summary: summary}
	sc := cfg.Study

	var (
		problem *analysis.Problem
		design  *analysis.Design
		outputs []float64
		indices *analysis.Indices
	)

	err := r.stage(StageProblem, func() (string, error) {
		var err error
		problem, err = cfg.Problem()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Problem defined with %d parameters", problem.NumVars()), nil
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(StageSample, func() (string, error) {
		sampler := &analysis.Saltelli{
			SecondOrder: sc.SecondOrder,
			Skip:        sc.Skip,
			Scramble:    sc.Scramble,
			Seed:        sc.Seed,
			Logger:      logger,
		}
		var err error
		design, err = sampler.Sample(problem, sc.SampleSize)
		if err != nil {
			return "", err
		}
		summary.Rows = design.Rows()
		return fmt.Sprintf("Generated %d samples", design.Rows()), nil
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(StageEvaluate, func() (string, error) {
		var err error
		outputs, err = tea.EvaluateDesign(ctx, sc.Coefficients, design.Samples, sc.Workers)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Evaluated model on %d samples", len(outputs)), nil
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(StageAnalyze, func() (string, error) {
		analyzer := &analysis.SobolAnalyzer{
			SecondOrder: sc.SecondOrder,
			Resamples:   sc.Resamples,
			ConfLevel:   sc.ConfLevel,
			Seed:        sc.Seed,
			Logger:      logger,
		}
		var err error
		indices, err = analyzer.Analyze(problem, design, outputs)
		if err != nil {
			return "", err
		}
		summary.Indices = indices
		top := indices.RankByTotalOrder()[0]
		return fmt.Sprintf("Computed Sobol indices, largest ST is %s (%.4f)", top.Name, top.Value), nil
	})
	if err != nil {
		return nil, err
	}

	if opts.SkipReport {
		return summary, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err = r.stage(StageReport, func() (string, error) {
		reporter := &report.Reporter{Dir: cfg.Output.Dir, PDF: cfg.Output.PDF, Logger: logger}
		info := report.RunInfo{
			RunID:       runID,
			Started:     summary.Started,
			SampleSize:  sc.SampleSize,
			Rows:        summary.Rows,
			SecondOrder: sc.SecondOrder,
			Scrambled:   sc.Scramble,
			Seed:        sc.Seed,
		}
		var err error
		summary.Artifacts, err = reporter.Write(info, indices)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Results saved to %s", cfg.Output.Dir), nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
