package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/odhe_tea_go/internal/msp"
	"github.com/user/odhe_tea_go/internal/report"
)

var (
	mspEthane        float64
	mspElectricity   float64
	mspSteam         float64
	mspRefrigeration float64
	mspSweep         bool
	mspPDF           string
)

var mspCmd = &cobra.Command{
	Use:   "msp",
	Short: "Compute the minimum selling price for one price scenario",
	Long: `Evaluates the plant's minimum selling price of ethylene. Prices not given
take the slider defaults; given ones are snapped onto the slider grid.

Examples:
  odhe_tea msp
  odhe_tea msp --ethane 1200 --steam 20 --sweep
  odhe_tea msp --pdf scenario.pdf`,
	Args: cobra.NoArgs,
	RunE: runMSP,
}

func init() {
	f := mspCmd.Flags()
	f.Float64Var(&mspEthane, "ethane", 0, "Ethane price (USD/t)")
	f.Float64Var(&mspElectricity, "electricity", 0, "Electricity price (USD/kWh)")
	f.Float64Var(&mspSteam, "steam", 0, "Steam price (USD/t)")
	f.Float64Var(&mspRefrigeration, "refrigeration", 0, "Refrigeration price (USD/kWh)")
	f.BoolVar(&mspSweep, "sweep", false, "Also sweep the ethane price across its range")
	f.StringVar(&mspPDF, "pdf", "", "Write a scenario PDF to this path")
}

func scenarioPrices(cmd *cobra.Command, sliders msp.Sliders) msp.Prices {
	p := sliders.Defaults()
	f := cmd.Flags()
	if f.Changed("ethane") {
		p.Ethane = mspEthane
	}
	if f.Changed("electricity") {
		p.Electricity = mspElectricity
	}
	if f.Changed("steam") {
		p.Steam = mspSteam
	}
	if f.Changed("refrigeration") {
		p.Refrigeration = mspRefrigeration
	}
	return sliders.Snap(p)
}

func runMSP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	prices := scenarioPrices(cmd, cfg.Sliders)

	res, err := msp.Compute(cfg.Plant, prices)
	if err != nil {
		return fmt.Errorf("MSP calculation failed: %w", err)
	}

	var sweep []msp.SweepPoint
	if mspSweep || mspPDF != "" {
		sweep, err = msp.EthaneSweep(cfg.Plant, prices, cfg.Sliders.Ethane, cfg.Server.SweepPoints)
		if err != nil {
			return fmt.Errorf("ethane sweep failed: %w", err)
		}
	}

	if mspPDF != "" {
		if err := writeScenarioPDF(res, sweep); err != nil {
			return err
		}
		printProgress(os.Stderr, "Scenario report saved to "+mspPDF)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			msp.Result
			Sweep []msp.SweepPoint `json:"sweep,omitempty"`
		}{res, sweep})
	}
	if !mspSweep {
		sweep = nil
	}
	printScenario(os.Stdout, res, sweep)
	return nil
}

func writeScenarioPDF(res msp.Result, sweep []msp.SweepPoint) error {
	chart, err := report.CreateSweepPlot(sweep)
	if err != nil {
		return err
	}
	doc, err := report.BuildScenarioPDF(res, sweep, chart)
	if err != nil {
		return err
	}
	if err := os.WriteFile(mspPDF, doc, 0o644); err != nil {
		return &report.IOError{Path: mspPDF, Err: err}
	}
	return nil
}
