package report

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/user/odhe_tea_go/internal/msp"
)

// CreateSweepPlot draws MSP against ethane price with a marker per sweep
// point.
func CreateSweepPlot(points []msp.SweepPoint) ([]byte, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("no sweep points to plot")
	}

	p := plot.New()
	p.Title.Text = "MSP vs Ethane Price"
	p.X.Label.Text = "Ethane Price ($/ton)"
	p.Y.Label.Text = "MSP ($/ton ethylene)"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(points))
	for i, sp := range points {
		if math.IsNaN(sp.MSP) || math.IsInf(sp.MSP, 0) {
			return nil, fmt.Errorf("sweep point %d has non-finite MSP", i)
		}
		pts[i] = plotter.XY{X: sp.EthanePrice, Y: sp.MSP}
	}

	line, scatter, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to create sweep line: %w", err)
	}
	line.Color = firstOrderColor
	line.LineStyle.Width = vg.Points(1.5)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Color = firstOrderColor
	scatter.GlyphStyle.Radius = vg.Points(3)
	p.Add(line, scatter)

	lo, hi := points[0].EthanePrice, points[len(points)-1].EthanePrice
	if len(points) > 1 && hi > lo {
		step := (hi - lo) / float64(len(points)-1)
		p.X.Tick.Marker = plot.ConstantTicks(generateTicks(lo, hi, step))
		pad := step / 4
		p.X.Min = lo - pad
		p.X.Max = hi + pad
	}

	return renderPNG(p, vg.Points(640), vg.Points(400))
}

// generateTicks returns labelled ticks from lo to hi every step, always
// including hi.
func generateTicks(lo, hi, step float64) []plot.Tick {
	if step <= 0 || hi < lo {
		return []plot.Tick{{Value: lo, Label: formatTick(lo)}}
	}
	var ticks []plot.Tick
	n := int(math.Floor((hi-lo)/step + 1e-9))
	for i := 0; i <= n; i++ {
		v := lo + float64(i)*step
		ticks = append(ticks, plot.Tick{Value: v, Label: formatTick(v)})
	}
	if last := ticks[len(ticks)-1].Value; math.Abs(last-hi) > step*1e-9 {
		ticks = append(ticks, plot.Tick{Value: hi, Label: formatTick(hi)})
	}
	return ticks
}

func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
