package msp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_ReferenceScenario(t *testing.T) {
	plant := ReferencePlant()
	prices := ReferenceSliders().Defaults()
	assert.Equal(t, Prices{Ethane: 1000, Electricity: 0.07, Steam: 15, Refrigeration: 0.05}, prices)

	res, err := Compute(plant, prices)
	require.NoError(t, err)

	// Closed form, evaluated in the same order as the model.
	var (
		r, n          = 0.1, 20.0
		hours         = 8000.0
		capex         = 220_000_000.0
		opexBase      = 578_000_000.0
		ethane        = 1000.0
		electricity   = 0.07
		steam         = 15.0
		refrigeration = 0.05
	)
	annualizedCapex := capex * (r * math.Pow(1+r, n)) / (math.Pow(1+r, n) - 1)
	total := annualizedCapex + opexBase +
		ethane*113*hours +
		100*29*hours +
		electricity*30000*hours +
		steam*150000*hours/1000 +
		refrigeration*250000*hours
	want := total / (91.6 * hours)

	assert.Equal(t, want, res.MSP)
	assert.InDelta(t, 2273.254800013592, res.MSP, 1e-9)
	assert.InDelta(t, 25841117.449960068, res.Breakdown.AnnualizedCapex, 1e-6)
	assert.Equal(t, 904_000_000.0, res.Breakdown.EthaneCost)
	assert.Equal(t, 23_200_000.0, res.Breakdown.OxygenCost)
	assert.Equal(t, 18_000_000.0, res.Breakdown.SteamCost)
	assert.Equal(t, 91.6*8000, res.AnnualProduction)
	assert.Equal(t, res.Breakdown.Total(), res.TotalAnnualCost)
}

func TestCompute_ZeroProduction(t *testing.T) {
	plant := ReferencePlant()
	plant.ProductionRate = 0

	_, err := Compute(plant, ReferenceSliders().Defaults())
	assert.ErrorIs(t, err, ErrZeroProduction)

	plant = ReferencePlant()
	plant.HoursPerYear = 0
	_, err = Compute(plant, ReferenceSliders().Defaults())
	assert.ErrorIs(t, err, ErrZeroProduction)
}

func TestCompute_InvalidLifetime(t *testing.T) {
	plant := ReferencePlant()
	plant.LifetimeYears = 0
	_, err := Compute(plant, ReferenceSliders().Defaults())
	assert.ErrorIs(t, err, ErrInvalidPlant)
}

func TestCapitalRecoveryFactor(t *testing.T) {
	crf, err := CapitalRecoveryFactor(0.1, 20)
	require.NoError(t, err)
	assert.InDelta(t, 0.11745962477254576, crf, 1e-12)

	crf, err = CapitalRecoveryFactor(0, 20)
	require.NoError(t, err)
	assert.Equal(t, 0.05, crf)

	// Approaches 1/n as the rate goes to zero.
	crf, err = CapitalRecoveryFactor(1e-9, 20)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, crf, 1e-6)

	_, err = CapitalRecoveryFactor(-0.1, 20)
	assert.ErrorIs(t, err, ErrInvalidPlant)
}

func TestEthaneSweep_StrictlyIncreasing(t *testing.T) {
	sliders := ReferenceSliders()
	points, err := EthaneSweep(ReferencePlant(), sliders.Defaults(), sliders.Ethane, DefaultSweepPoints)
	require.NoError(t, err)
	require.Len(t, points, 6)

	wantPrices := []float64{800, 900, 1000, 1100, 1200, 1300}
	for i, p := range points {
		assert.Equal(t, wantPrices[i], p.EthanePrice)
		if i > 0 {
			assert.Greater(t, p.MSP, points[i-1].MSP)
		}
	}
	assert.InDelta(t, 2026.5299091838976, points[0].MSP, 1e-9)
	assert.InDelta(t, 2643.3421362581335, points[5].MSP, 1e-9)

	// The sweep point at the default ethane price matches the metric.
	res, err := Compute(ReferencePlant(), sliders.Defaults())
	require.NoError(t, err)
	assert.Equal(t, res.MSP, points[2].MSP)
}

func TestEthaneSweep_Errors(t *testing.T) {
	sliders := ReferenceSliders()
	_, err := EthaneSweep(ReferencePlant(), sliders.Defaults(), sliders.Ethane, 1)
	assert.Error(t, err)

	plant := ReferencePlant()
	plant.ProductionRate = 0
	_, err = EthaneSweep(plant, sliders.Defaults(), sliders.Ethane, 6)
	assert.ErrorIs(t, err, ErrZeroProduction)
}

func TestSlider_Snap(t *testing.T) {
	s := ReferenceSliders()

	assert.Equal(t, 0.07, s.Electricity.Snap(0.07))
	assert.Equal(t, 0.07, s.Electricity.Snap(0.0712))
	assert.Equal(t, 0.05, s.Electricity.Snap(0.01))
	assert.Equal(t, 0.1, s.Electricity.Snap(0.5))
	assert.Equal(t, 0.08, s.Refrigeration.Snap(0.0799))
	assert.Equal(t, 1050.0, s.Ethane.Snap(1040))
	assert.Equal(t, 800.0, s.Ethane.Snap(100))
	assert.Equal(t, 12.0, s.Steam.Snap(12.4))
	assert.Equal(t, 1000.0, s.Ethane.Snap(math.NaN()))
}

func TestSlider_Decimals(t *testing.T) {
	s := ReferenceSliders()
	assert.Equal(t, 0, s.Ethane.Decimals())
	assert.Equal(t, 2, s.Electricity.Decimals())
	assert.Equal(t, 0, s.Steam.Decimals())
}

func TestSliders_Validate(t *testing.T) {
	require.NoError(t, ReferenceSliders().Validate())

	bad := ReferenceSliders()
	bad.Steam.Step = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidSlider)

	bad = ReferenceSliders()
	bad.Ethane.Default = 2000
	assert.ErrorIs(t, bad.Validate(), ErrInvalidSlider)

	bad = ReferenceSliders()
	bad.Electricity.Min = 0.2
	assert.ErrorIs(t, bad.Validate(), ErrInvalidSlider)
}

func TestSliders_ListOrder(t *testing.T) {
	keys := []string{}
	for _, s := range ReferenceSliders().List() {
		keys = append(keys, s.Key)
	}
	assert.Equal(t, []string{"ethane", "electricity", "steam", "refrigeration"}, keys)
}
