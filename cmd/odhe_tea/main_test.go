package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/odhe_tea_go/internal/analysis"
	"github.com/user/odhe_tea_go/internal/config"
	"github.com/user/odhe_tea_go/internal/msp"
	"github.com/user/odhe_tea_go/internal/report"
	"github.com/user/odhe_tea_go/internal/study"
)

func init() {
	color.NoColor = true
}

func testIndices() *analysis.Indices {
	ix := analysis.NewIndices([]string{"conversion", "selectivity", "C2H6_O2_ratio"})
	ix.S1 = []float64{0.18, 0.04, 0.77}
	ix.ST = []float64{0.19, 0.04, 0.77}
	ix.S1Conf = []float64{0.01, 0.01, 0.02}
	ix.STConf = []float64{0.01, 0.01, 0.02}
	return ix
}

func TestIndexBar(t *testing.T) {
	assert.Equal(t, "░░░░░░░░░░░░░░░░░░░░░░░░", indexBar(0))
	assert.Equal(t, "████████████████████████", indexBar(1))
	assert.Equal(t, "████████████░░░░░░░░░░░░", indexBar(0.5))
	assert.Equal(t, indexBar(0), indexBar(-0.02))
	assert.Equal(t, indexBar(1), indexBar(1.3))
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	s := &study.Summary{
		RunID:     "8f2c",
		Rows:      5120,
		Indices:   testIndices(),
		Artifacts: report.Artifacts{IndicesCSV: "results/a.csv", BarPlot: "results/b.png"},
		Durations: map[study.Stage]time.Duration{study.StageSample: time.Second},
	}
	printSummary(&out, s)

	text := out.String()
	assert.Contains(t, text, "Run 8f2c")
	assert.Contains(t, text, "5120 model evaluations")
	assert.Contains(t, text, "C2H6_O2_ratio")
	assert.Contains(t, text, "±0.0200")
	assert.Contains(t, text, "results/b.png")
}

func TestPrintScenario(t *testing.T) {
	res, err := msp.Compute(msp.ReferencePlant(), msp.ReferenceSliders().Defaults())
	require.NoError(t, err)

	var out bytes.Buffer
	printScenario(&out, res, []msp.SweepPoint{{EthanePrice: 800, MSP: 2026.53}})
	text := out.String()
	assert.Contains(t, text, "$2273.25 per ton ethylene")
	assert.Contains(t, text, "ETHANE SWEEP")
	assert.Contains(t, text, "2026.53")
}

func TestApplySensitivityFlags(t *testing.T) {
	cmd := sensitivityCmd
	require.NoError(t, cmd.Flags().Parse([]string{"-n", "512", "--seed", "7", "--no-scramble", "--out", "x"}))

	cfg := config.Default()
	require.NoError(t, applySensitivityFlags(cmd, &cfg))
	assert.Equal(t, 512, cfg.Study.SampleSize)
	require.NotNil(t, cfg.Study.Seed)
	assert.Equal(t, uint64(7), *cfg.Study.Seed)
	assert.False(t, cfg.Study.Scramble)
	assert.Equal(t, "x", cfg.Output.Dir)
	assert.False(t, cfg.Study.SecondOrder)
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("debug", true)
	assert.NoError(t, err)
	_, err = newLogger("warn", false)
	assert.NoError(t, err)
	_, err = newLogger("chatty", false)
	assert.Error(t, err)
}
