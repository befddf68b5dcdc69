package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/user/odhe_tea_go/internal/parser"
	"github.com/user/odhe_tea_go/internal/report"
)

var (
	renderOut string
	renderPDF bool
)

var renderCmd = &cobra.Command{
	Use:   "render <indices.csv>",
	Short: "Re-render charts and the PDF from a saved indices CSV",
	Long: `Reads an indices table written by "odhe_tea sensitivity" and renders the
bar chart (and PDF) again without re-running the study. The CSV itself is
never rewritten.

Example:
  odhe_tea render results/odhe_sensitivity_indices.csv --out figures --pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Output directory (default: the CSV's directory)")
	renderCmd.Flags().BoolVar(&renderPDF, "pdf", true, "Also write a PDF summary")
}

func runRender(cmd *cobra.Command, args []string) error {
	path := args[0]
	parsed, err := parser.ParseIndicesCSV(path)
	if err != nil {
		return fmt.Errorf("failed to parse indices: %w", err)
	}
	if len(parsed.ParseErrors) > 0 {
		fmt.Fprintf(os.Stderr, "%d problems while reading %s:\n", len(parsed.ParseErrors), path)
		printWarnings(os.Stderr, parsed.ParseErrors)
	}

	out := renderOut
	if out == "" {
		out = filepath.Dir(path)
	}
	// The input is the indices table; rewriting it would drop skipped rows.
	reporter := &report.Reporter{Dir: out, PDF: renderPDF, SkipCSV: true}
	artifacts, err := reporter.Write(report.RunInfo{RunID: "rendered from " + filepath.Base(path)}, parsed.Indices)
	if err != nil {
		return err
	}
	printIndices(os.Stdout, parsed.Indices)
	for _, p := range artifacts.Paths() {
		printProgress(os.Stderr, "Wrote "+p)
	}
	return nil
}
