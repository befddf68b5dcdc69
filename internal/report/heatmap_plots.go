package report

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/odhe_tea_go/internal/analysis"
)

// interactionGrid adapts a square second order index matrix to
// plotter.GridXYZ. Column c and row r are parameter indices.
type interactionGrid struct {
	z [][]float64
}

func (g interactionGrid) Dims() (c, r int)   { return len(g.z), len(g.z) }
func (g interactionGrid) Z(c, r int) float64 { return g.z[r][c] }
func (g interactionGrid) X(c int) float64    { return float64(c) }
func (g interactionGrid) Y(r int) float64    { return float64(r) }

// CreateSecondOrderHeatmap draws the pairwise S2 indices. Only the upper
// triangle holds estimates; other cells are drawn in the NaN color.
func CreateSecondOrderHeatmap(ix *analysis.Indices) ([]byte, error) {
	if ix == nil || len(ix.S2) == 0 {
		return nil, fmt.Errorf("no second order indices to plot")
	}
	n := len(ix.Names)
	if len(ix.S2) != n {
		return nil, fmt.Errorf("second order matrix is %dx%d for %d parameters", len(ix.S2), len(ix.S2), n)
	}

	// Symmetric range around zero so noise and real interactions read the
	// same way on the diverging map.
	limit := 0.0
	for j := range ix.S2 {
		for k := range ix.S2[j] {
			if v := ix.S2[j][k]; !math.IsNaN(v) {
				limit = math.Max(limit, math.Abs(v))
			}
		}
	}
	if limit == 0 {
		limit = 1
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-limit)
	cmap.SetMax(limit)

	hm := plotter.NewHeatMap(interactionGrid{z: ix.S2}, cmap.Palette(255))
	hm.Min = -limit
	hm.Max = limit
	hm.NaN = color.Gray{Y: 220}

	p := plot.New()
	p.Title.Text = "Second Order Sobol Indices (S2)"
	p.Add(hm)

	ticks := make([]plot.Tick, n)
	for i, name := range ix.Names {
		ticks[i] = plot.Tick{Value: float64(i), Label: name}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Min, p.X.Max = -0.5, float64(n)-0.5
	p.Y.Min, p.Y.Max = -0.5, float64(n)-0.5

	return renderPNG(p, vg.Points(560), vg.Points(480))
}
