package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/odhe_tea_go/internal/analysis"
	"github.com/user/odhe_tea_go/internal/msp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "odhe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_IsReferenceScenario(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1024, cfg.Study.SampleSize)
	assert.False(t, cfg.Study.SecondOrder)
	assert.Equal(t, "results", cfg.Output.Dir)
	assert.Equal(t, msp.ReferencePlant(), cfg.Plant)
	assert.Equal(t, msp.ReferenceSliders(), cfg.Sliders)

	p, err := cfg.Problem()
	require.NoError(t, err)
	assert.Equal(t, analysis.ReferenceProblem().Names, p.Names)
	assert.Equal(t, analysis.ReferenceProblem().Bounds, p.Bounds)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverlaysFile(t *testing.T) {
	path := writeConfig(t, `
study:
  sample_size: 512
  second_order: true
  seed: 42
  workers: 4
  parameters:
    - {name: conversion, low: 0.4, high: 0.7}
    - {name: selectivity, low: 0.6, high: 0.9}
    - {name: C2H6_O2_ratio, low: 1.5, high: 2.5}
plant:
  oxygen_price: 120
output:
  dir: out
  pdf: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 512, cfg.Study.SampleSize)
	assert.True(t, cfg.Study.SecondOrder)
	require.NotNil(t, cfg.Study.Seed)
	assert.Equal(t, uint64(42), *cfg.Study.Seed)
	assert.Equal(t, 4, cfg.Study.Workers)
	assert.Len(t, cfg.Study.Parameters, 3)
	assert.Equal(t, 0.4, cfg.Study.Parameters[0].Low)
	assert.Equal(t, 120.0, cfg.Plant.OxygenPrice)
	// Untouched fields keep their defaults.
	assert.Equal(t, 113.0, cfg.Plant.EthaneFlow)
	assert.Equal(t, 0.95, cfg.Study.ConfLevel)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.True(t, cfg.Output.PDF)
}

func TestLoad_RejectsInvalidProblem(t *testing.T) {
	path := writeConfig(t, `
study:
  parameters:
    - {name: conversion, low: 0.8, high: 0.3}
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, analysis.ErrInvalidProblem)
}

func TestLoad_RejectsParametersNotMatchingModel(t *testing.T) {
	cases := map[string]string{
		"reordered": `
study:
  parameters:
    - {name: selectivity, low: 0.6, high: 0.95}
    - {name: conversion, low: 0.3, high: 0.8}
    - {name: C2H6_O2_ratio, low: 1.0, high: 3.0}
`,
		"extra input": `
study:
  parameters:
    - {name: conversion, low: 0.3, high: 0.8}
    - {name: selectivity, low: 0.6, high: 0.95}
    - {name: C2H6_O2_ratio, low: 1.0, high: 3.0}
    - {name: pressure, low: 1, high: 5}
`,
		"renamed": `
study:
  parameters:
    - {name: conversion, low: 0.3, high: 0.8}
    - {name: selectivity, low: 0.6, high: 0.95}
    - {name: ratio, low: 1.0, high: 3.0}
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
			assert.ErrorIs(t, err, analysis.ErrInvalidProblem)
			assert.Contains(t, err.Error(), "study.parameters")
		})
	}
}

func TestLoad_RejectsInvalidSlider(t *testing.T) {
	path := writeConfig(t, `
sliders:
  steam: {key: steam, min: 25, max: 10, step: 1, default: 15}
`)
	_, err := Load(path)
	assert.ErrorIs(t, err, msp.ErrInvalidSlider)
}

func TestLoad_RejectsTagViolations(t *testing.T) {
	cases := map[string]string{
		"conf level":     "study: {conf_level: 1.5}",
		"negative capex": "plant: {capex: -1}",
		"server addr":    "server: {addr: 'not an address'}",
		"empty out dir":  "output: {dir: ''}",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "study: [unclosed"))
	assert.Error(t, err)
}

func TestLoad_ExampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "odhe.example.yaml"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Plant, cfg.Plant)
	assert.Equal(t, def.Study.Parameters, cfg.Study.Parameters)
	assert.Equal(t, def.Study.Coefficients, cfg.Study.Coefficients)
	assert.True(t, cfg.Output.PDF)
}
