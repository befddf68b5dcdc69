package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/user/odhe_tea_go/internal/analysis"
	"github.com/user/odhe_tea_go/internal/msp"
	"github.com/user/odhe_tea_go/internal/study"
)

func printProgress(w io.Writer, msg string) {
	green := color.New(color.FgGreen)
	_, _ = green.Fprint(w, "  ✓ ")
	fmt.Fprintln(w, msg)
}

func printWarnings(w io.Writer, warnings []string) {
	yellow := color.New(color.FgYellow)
	for _, msg := range warnings {
		_, _ = yellow.Fprintln(w, "  "+msg)
	}
}

// indexBar renders a value in [0,1] as a fixed-width bar.
func indexBar(v float64) string {
	const barWidth = 24
	if math.IsNaN(v) {
		v = 0
	}
	filled := int(v*barWidth + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func printIndices(w io.Writer, ix *analysis.Indices) {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)
	cyan := color.New(color.FgCyan)

	_, _ = bold.Fprintf(w, "%-16s %10s %10s  %s\n", "PARAMETER", "S1", "ST", "ST")
	for i, name := range ix.Names {
		fmt.Fprintf(w, "%-16s %10.4f %10.4f  ", name, ix.S1[i], ix.ST[i])
		_, _ = cyan.Fprintln(w, indexBar(ix.ST[i]))
		if ix.HasConfidence() {
			_, _ = dim.Fprintf(w, "%-16s %10s %10s\n", "",
				fmt.Sprintf("±%.4f", ix.S1Conf[i]), fmt.Sprintf("±%.4f", ix.STConf[i]))
		}
	}
	if len(ix.S2) > 0 {
		fmt.Fprintln(w)
		_, _ = bold.Fprintln(w, "SECOND ORDER")
		for j := range ix.Names {
			for k := j + 1; k < len(ix.Names); k++ {
				fmt.Fprintf(w, "%-16s x %-16s %8.4f\n", ix.Names[j], ix.Names[k], ix.S2[j][k])
			}
		}
	}
}

func printSummary(w io.Writer, s *study.Summary) {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)

	fmt.Fprintln(w)
	_, _ = dim.Fprintln(w, "  "+strings.Repeat("━", 50))
	_, _ = bold.Fprintf(w, "Run %s\n", s.RunID)
	_, _ = dim.Fprintf(w, "%d model evaluations in %s\n\n", s.Rows, s.Elapsed().Round(time.Millisecond))

	printIndices(w, s.Indices)

	fmt.Fprintln(w)
	_, _ = bold.Fprintln(w, "FILES")
	for _, p := range s.Artifacts.Paths() {
		fmt.Fprintln(w, "  "+p)
	}
}

type summaryOutput struct {
	RunID     string                    `json:"run_id"`
	Rows      int                       `json:"rows"`
	Indices   map[string]analysis.Index `json:"indices"`
	Artifacts []string                  `json:"artifacts"`
	ElapsedMS int64                     `json:"elapsed_ms"`
}

func summaryJSON(s *study.Summary) summaryOutput {
	return summaryOutput{
		RunID:     s.RunID,
		Rows:      s.Rows,
		Indices:   s.Indices.Map(),
		Artifacts: s.Artifacts.Paths(),
		ElapsedMS: s.Elapsed().Milliseconds(),
	}
}

func printScenario(w io.Writer, res msp.Result, sweep []msp.SweepPoint) {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen, color.Bold)

	fmt.Fprint(w, "Minimum Selling Price: ")
	_, _ = green.Fprintf(w, "$%.2f per ton ethylene\n", res.MSP)
	_, _ = dim.Fprintf(w, "ethane %.0f  electricity %.2f  steam %.0f  refrigeration %.2f\n\n",
		res.Prices.Ethane, res.Prices.Electricity, res.Prices.Steam, res.Prices.Refrigeration)

	b := res.Breakdown
	_, _ = bold.Fprintln(w, "ANNUAL COST (MUSD)")
	rows := []struct {
		name  string
		value float64
	}{
		{"Annualized CAPEX", b.AnnualizedCapex},
		{"Base OPEX", b.OpexBase},
		{"Ethane", b.EthaneCost},
		{"Oxygen", b.OxygenCost},
		{"Electricity", b.ElectricityCost},
		{"Steam", b.SteamCost},
		{"Refrigeration", b.RefrigerationCost},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %-18s %10.3f\n", r.name, r.value/1e6)
	}
	_, _ = bold.Fprintf(w, "  %-18s %10.3f\n", "Total", res.TotalAnnualCost/1e6)

	if len(sweep) > 0 {
		fmt.Fprintln(w)
		_, _ = bold.Fprintln(w, "ETHANE SWEEP")
		for _, p := range sweep {
			fmt.Fprintf(w, "  %8.0f  %10.2f\n", p.EthanePrice, p.MSP)
		}
	}
}
