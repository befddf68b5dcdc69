package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/odhe_tea_go/internal/analysis"
)

var (
	firstOrderColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 255} // blue
	totalOrderColor = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 255} // orange
)

// CreateIndicesBarPlot draws a grouped bar chart with an S1 and an ST bar
// per parameter, parameter names on the x axis, in problem order.
func CreateIndicesBarPlot(ix *analysis.Indices) ([]byte, error) {
	if ix == nil || len(ix.Names) == 0 {
		return nil, fmt.Errorf("no sensitivity indices to plot")
	}

	p := plot.New()
	p.Title.Text = "Sobol Sensitivity Indices"
	p.Y.Label.Text = "Sensitivity index"
	p.Add(plotter.NewGrid())

	barWidth := vg.Points(28)

	s1Bars, err := plotter.NewBarChart(barValues(ix.S1), barWidth)
	if err != nil {
		return nil, fmt.Errorf("failed to create S1 bars: %w", err)
	}
	s1Bars.Color = firstOrderColor
	s1Bars.LineStyle.Width = 0
	s1Bars.Offset = -barWidth / 2

	stBars, err := plotter.NewBarChart(barValues(ix.ST), barWidth)
	if err != nil {
		return nil, fmt.Errorf("failed to create ST bars: %w", err)
	}
	stBars.Color = totalOrderColor
	stBars.LineStyle.Width = 0
	stBars.Offset = barWidth / 2

	p.Add(s1Bars, stBars)
	p.Legend.Add("S1", s1Bars)
	p.Legend.Add("ST", stBars)
	p.Legend.Top = true
	p.NominalX(ix.Names...)

	// Finite-sample noise can push small indices below zero.
	if p.Y.Min > 0 {
		p.Y.Min = 0
	}

	return renderPNG(p, vg.Points(640), vg.Points(480))
}

// barValues draws missing (NaN) indices as zero-height bars.
func barValues(v []float64) plotter.Values {
	out := make(plotter.Values, len(v))
	for i, x := range v {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out[i] = x
		}
	}
	return out
}

// renderPNG writes the plot into PNG bytes.
func renderPNG(p *plot.Plot, width, height vg.Length) ([]byte, error) {
	writer, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %w", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %w", err)
	}
	return buf.Bytes(), nil
}
