package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/odhe_tea_go/internal/analysis"
	"github.com/user/odhe_tea_go/internal/msp"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleIndices(secondOrder bool) *analysis.Indices {
	ix := analysis.NewIndices([]string{"conversion", "selectivity", "C2H6_O2_ratio"})
	ix.S1 = []float64{0.1839, 0.0401, 0.7739}
	ix.ST = []float64{0.1859, 0.0420, 0.7740}
	ix.S1Conf = []float64{0.02, 0.01, 0.03}
	ix.STConf = []float64{0.01, 0.005, 0.02}
	ix.ConfLevel = 0.95
	if secondOrder {
		nan := math.NaN()
		ix.S2 = [][]float64{{nan, 0.002, -0.001}, {nan, nan, 0.0005}, {nan, nan, nan}}
		ix.S2Conf = [][]float64{{nan, 0.01, 0.01}, {nan, nan, 0.01}, {nan, nan, nan}}
	}
	return ix
}

func TestRenderIndicesCSV(t *testing.T) {
	ix := sampleIndices(false)
	data, err := RenderIndicesCSV(ix)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Parameter", "S1", "ST"}, records[0])
	assert.Equal(t, []string{"conversion", "0.1839", "0.1859"}, records[1])
	assert.Equal(t, "selectivity", records[2][0])
	assert.Equal(t, "C2H6_O2_ratio", records[3][0])
}

func TestCreateIndicesBarPlot(t *testing.T) {
	img, err := CreateIndicesBarPlot(sampleIndices(false))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = CreateIndicesBarPlot(nil)
	assert.Error(t, err)
}

func TestCreateSecondOrderHeatmap(t *testing.T) {
	img, err := CreateSecondOrderHeatmap(sampleIndices(true))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = CreateSecondOrderHeatmap(sampleIndices(false))
	assert.Error(t, err)
}

func TestCreateSweepPlot(t *testing.T) {
	sliders := msp.ReferenceSliders()
	points, err := msp.EthaneSweep(msp.ReferencePlant(), sliders.Defaults(), sliders.Ethane, msp.DefaultSweepPoints)
	require.NoError(t, err)

	img, err := CreateSweepPlot(points)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = CreateSweepPlot(nil)
	assert.Error(t, err)
}

func TestGenerateTicks(t *testing.T) {
	ticks := generateTicks(800, 1300, 100)
	require.Len(t, ticks, 6)
	assert.Equal(t, "800", ticks[0].Label)
	assert.Equal(t, 1300.0, ticks[5].Value)

	ticks = generateTicks(0.05, 0.1, 0.02)
	assert.Equal(t, 0.1, ticks[len(ticks)-1].Value)
	assert.Equal(t, "0.10", ticks[len(ticks)-1].Label)
}

func TestBuildPDFs(t *testing.T) {
	seed := uint64(7)
	info := RunInfo{RunID: "test-run", Started: time.Now(), SampleSize: 64, Rows: 320, Scrambled: true, Seed: &seed}
	ix := sampleIndices(true)
	bar, err := CreateIndicesBarPlot(ix)
	require.NoError(t, err)

	doc, err := BuildSensitivityPDF(info, ix, map[string][]byte{ImageIndices: bar})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))

	res, err := msp.Compute(msp.ReferencePlant(), msp.ReferenceSliders().Defaults())
	require.NoError(t, err)
	doc, err = BuildScenarioPDF(res, nil, nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestReporter_WritesAllArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "results")
	r := &Reporter{Dir: dir, PDF: true}

	a, err := r.Write(RunInfo{RunID: "abc"}, sampleIndices(true))
	require.NoError(t, err)
	require.Len(t, a.Paths(), 4)
	for _, p := range a.Paths() {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.Greater(t, info.Size(), int64(0))
	}
	assert.Equal(t, filepath.Join(dir, IndicesCSVFile), a.IndicesCSV)
	assert.Equal(t, filepath.Join(dir, PDFFile), a.PDF)
}

func TestReporter_FirstOrderOnlySkipsHeatmap(t *testing.T) {
	dir := t.TempDir()
	a, err := (&Reporter{Dir: dir}).Write(RunInfo{}, sampleIndices(false))
	require.NoError(t, err)
	assert.Empty(t, a.Heatmap)
	assert.Empty(t, a.PDF)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestReporter_UnwritableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := (&Reporter{Dir: filepath.Join(blocker, "out")}).Write(RunInfo{}, sampleIndices(false))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, filepath.Join(blocker, "out"), ioErr.Path)
}

func TestReporter_RemovesPartialOutput(t *testing.T) {
	dir := t.TempDir()
	// A directory squatting on the bar chart name makes the second write fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, BarPlotFile), 0o755))

	_, err := (&Reporter{Dir: dir}).Write(RunInfo{}, sampleIndices(false))
	assert.ErrorIs(t, err, ErrIO)
	_, statErr := os.Stat(filepath.Join(dir, IndicesCSVFile))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCreateIndicesBarPlot_MissingValues(t *testing.T) {
	ix := sampleIndices(false)
	ix.S1[0] = math.NaN()
	ix.ST[2] = math.Inf(1)

	png, err := CreateIndicesBarPlot(ix)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))

	doc, err := BuildSensitivityPDF(RunInfo{RunID: "nan"}, ix, map[string][]byte{ImageIndices: png})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestReporter_SkipCSV(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, IndicesCSVFile)
	original := []byte("Parameter,S1,ST\nconversion,0.1,0.2\nselectivity,bad\n")
	require.NoError(t, os.WriteFile(existing, original, 0o644))

	a, err := (&Reporter{Dir: dir, SkipCSV: true}).Write(RunInfo{}, sampleIndices(false))
	require.NoError(t, err)
	assert.Empty(t, a.IndicesCSV)
	assert.Equal(t, []string{filepath.Join(dir, BarPlotFile)}, a.Paths())

	got, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}
