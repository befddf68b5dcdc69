package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/user/odhe_tea_go/internal/analysis"
	"github.com/user/odhe_tea_go/internal/msp"
)

const (
	inchToMm               = 25.4
	pdfPageWidthLandscape  = 11 * inchToMm // Letter landscape
	pdfPageHeightLandscape = 8.5 * inchToMm
	pdfMargin              = 0.5 * inchToMm
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)
)

// Image keys understood by the PDF builders.
const (
	ImageIndices   = "indices_bar"
	ImageS2Heatmap = "s2_heatmap"
	ImageSweep     = "ethane_sweep"
)

// RunInfo is the run metadata printed at the top of a sensitivity report.
type RunInfo struct {
	RunID       string
	Started     time.Time
	SampleSize  int
	Rows        int
	SecondOrder bool
	Scrambled   bool
	Seed        *uint64
}

// pdfStyler holds reusable styling and layout state for PDF generation.
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	styles      map[string]func()
	lineHeight  float64
	currentY    float64 // manual Y tracking for flowing content
	pageHeight  float64
	contentTopY float64
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		styles:      make(map[string]func()),
		lineHeight:  6, // mm
		pageHeight:  pdfPageHeightLandscape - (2 * pdfMargin),
		contentTopY: pdfMargin,
	}
	s.currentY = s.contentTopY
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 14)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetFillColor(200, 200, 200)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", 9)
		s.pdf.SetTextColor(50, 50, 50)
	}
	s.styles["tableCellStrong"] = func() { // dominant parameter, final total
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetTextColor(0, 70, 140)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
	} else {
		s.styles["normal"]()
	}
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > s.pageHeight {
		s.newPage()
	}
}

func (s *pdfStyler) newPage() {
	s.pdf.AddPage()
	s.currentY = s.contentTopY
}

func (s *pdfStyler) writeParagraph(text string, styleName string, align string) {
	s.applyStyle(styleName)
	lines := s.pdf.SplitLines([]byte(text), pdfContentWidth)
	s.checkAddPage(math.Max(1, float64(len(lines))) * s.lineHeight)

	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, text, "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
}

// addTable draws a bordered table. styleFor picks the cell style per row
// and column; nil uses "tableCell" throughout.
func (s *pdfStyler) addTable(headers []string, colWidthsRel []float64, rows [][]string, styleFor func(row, col int) string) {
	colWidths := make([]float64, len(colWidthsRel))
	for i, rel := range colWidthsRel {
		colWidths[i] = rel * pdfContentWidth
	}

	drawHeader := func() {
		s.applyStyle("tableHeader")
		x := pdfMargin
		for i, header := range headers {
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(colWidths[i], s.lineHeight, header, "1", 0, "C", true, 0, "")
			x += colWidths[i]
		}
		s.currentY += s.lineHeight
	}

	s.checkAddPage(s.lineHeight * float64(len(rows)+1))
	drawHeader()
	for r, row := range rows {
		if s.currentY+s.lineHeight > s.pageHeight {
			s.newPage()
			drawHeader()
		}
		x := pdfMargin
		for c, cell := range row {
			style := "tableCell"
			if styleFor != nil {
				style = styleFor(r, c)
			}
			s.applyStyle(style)
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(colWidths[c], s.lineHeight, cell, "1", 0, "C", false, 0, "")
			x += colWidths[c]
		}
		s.currentY += s.lineHeight
	}
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width, height float64, caption string) {
	s.pdf.RegisterImageReader(imageName, "PNG", bytes.NewReader(imageBytes))

	if width > pdfContentWidth {
		ratio := pdfContentWidth / width
		width = pdfContentWidth
		height *= ratio
	}

	captionHeight := 0.0
	if caption != "" {
		captionHeight = s.lineHeight + 1
	}
	s.checkAddPage(height + captionHeight)

	x := pdfMargin + (pdfContentWidth-width)/2
	s.pdf.Image(imageName, x, s.currentY, width, height, false, "PNG", 0, "")
	s.currentY += height

	if caption != "" {
		s.addSpacer(1)
		s.writeParagraph(caption, "normal", "C")
	}
	s.addSpacer(2)
}

// output finalises the document into memory so callers decide where it
// lands.
func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to build PDF: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func newLandscapePDF() (*gofpdf.Fpdf, *pdfStyler) {
	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AddPage()
	return pdf, newPDFStyler(pdf)
}

func formatIndex(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func withConf(v float64, conf []float64, i int) string {
	if conf == nil || i >= len(conf) {
		return formatIndex(v)
	}
	return fmt.Sprintf("%s +/- %s", formatIndex(v), formatIndex(conf[i]))
}

// BuildSensitivityPDF lays out the run metadata, the index table and the
// charts found in images.
func BuildSensitivityPDF(info RunInfo, ix *analysis.Indices, images map[string][]byte) ([]byte, error) {
	if ix == nil {
		return nil, fmt.Errorf("no sensitivity indices to report")
	}
	pdf, styler := newLandscapePDF()

	styler.writeParagraph("ODHE Techno-Economic Sensitivity Report", "h1", "C")
	styler.addSpacer(4)

	seed := "clock"
	if info.Seed != nil {
		seed = strconv.FormatUint(*info.Seed, 10)
	}
	meta := fmt.Sprintf("Run %s  |  N = %d base samples, %d model evaluations  |  second order: %t  |  scrambled: %t (seed %s)",
		info.RunID, info.SampleSize, info.Rows, info.SecondOrder, info.Scrambled, seed)
	styler.writeParagraph(meta, "normal", "L")
	if !info.Started.IsZero() {
		styler.writeParagraph("Started "+info.Started.Format(time.RFC1123), "normal", "L")
	}
	styler.addSpacer(5)

	styler.writeParagraph("Sobol Indices", "h2", "L")
	confHeader := ""
	if ix.HasConfidence() {
		confHeader = fmt.Sprintf(" (%.0f%% CI)", ix.ConfLevel*100)
	}
	ranked := ix.RankByTotalOrder()
	dominant := ""
	if len(ranked) > 0 {
		dominant = ranked[0].Name
	}
	rows := make([][]string, len(ix.Names))
	for i, name := range ix.Names {
		var s1Conf, stConf []float64
		if ix.HasConfidence() {
			s1Conf, stConf = ix.S1Conf, ix.STConf
		}
		rows[i] = []string{name, withConf(ix.S1[i], s1Conf, i), withConf(ix.ST[i], stConf, i)}
	}
	styler.addTable(
		[]string{"Parameter", "S1" + confHeader, "ST" + confHeader},
		[]float64{0.3, 0.35, 0.35},
		rows,
		func(r, _ int) string {
			if ix.Names[r] == dominant {
				return "tableCellStrong"
			}
			return "tableCell"
		},
	)
	styler.addSpacer(3)
	if dominant != "" {
		styler.writeParagraph(fmt.Sprintf("Largest total order index: %s (ST = %s).", dominant, formatIndex(ranked[0].Value)), "normal", "L")
	}

	if len(ix.S2) > 0 {
		styler.addSpacer(4)
		styler.writeParagraph("Second Order Indices", "h2", "L")
		var s2Rows [][]string
		for j := range ix.Names {
			for k := j + 1; k < len(ix.Names); k++ {
				var conf string
				if len(ix.S2Conf) > j {
					conf = formatIndex(ix.S2Conf[j][k])
				}
				s2Rows = append(s2Rows, []string{ix.Names[j], ix.Names[k], formatIndex(ix.S2[j][k]), conf})
			}
		}
		styler.addTable([]string{"Parameter", "Parameter", "S2", "Confidence"}, []float64{0.3, 0.3, 0.2, 0.2}, s2Rows, nil)
	}

	plotDefs := []struct {
		Key     string
		Title   string
		Caption string
	}{
		{ImageIndices, "First and Total Order Indices", "S1 and ST per parameter"},
		{ImageS2Heatmap, "Parameter Interactions", "Second order indices (upper triangle)"},
	}
	imgWidth := pdfContentWidth * 0.6
	imgHeight := imgWidth * 0.75
	for _, def := range plotDefs {
		imgBytes, ok := images[def.Key]
		if !ok || len(imgBytes) == 0 {
			if def.Key == ImageIndices {
				slog.Warn("bar chart missing from sensitivity report")
			}
			continue
		}
		styler.newPage()
		styler.writeParagraph(def.Title, "h2", "L")
		styler.addImage(imgBytes, def.Key, imgWidth, imgHeight, def.Caption)
	}

	return output(pdf)
}

// BuildScenarioPDF reports one MSP scenario with its cost breakdown and,
// when provided, the ethane price sweep.
func BuildScenarioPDF(res msp.Result, sweep []msp.SweepPoint, sweepChart []byte) ([]byte, error) {
	pdf, styler := newLandscapePDF()

	styler.writeParagraph("ODHE Minimum Selling Price", "h1", "C")
	styler.addSpacer(4)
	styler.writeParagraph(fmt.Sprintf("Minimum selling price: %.2f USD/t ethylene", res.MSP), "h2", "L")
	styler.writeParagraph(fmt.Sprintf("Ethane %.0f USD/t, electricity %.2f USD/kWh, steam %.0f USD/t, refrigeration %.2f USD/kWh",
		res.Prices.Ethane, res.Prices.Electricity, res.Prices.Steam, res.Prices.Refrigeration), "normal", "L")
	styler.addSpacer(4)

	b := res.Breakdown
	terms := []struct {
		Name  string
		Value float64
	}{
		{"Annualized CAPEX", b.AnnualizedCapex},
		{"Base OPEX", b.OpexBase},
		{"Ethane", b.EthaneCost},
		{"Oxygen", b.OxygenCost},
		{"Electricity", b.ElectricityCost},
		{"Steam", b.SteamCost},
		{"Refrigeration", b.RefrigerationCost},
		{"Total", res.TotalAnnualCost},
	}
	rows := make([][]string, len(terms))
	for i, t := range terms {
		share := "100.0"
		if res.TotalAnnualCost != 0 {
			share = strconv.FormatFloat(100*t.Value/res.TotalAnnualCost, 'f', 1, 64)
		}
		rows[i] = []string{t.Name, strconv.FormatFloat(t.Value/1e6, 'f', 3, 64), share}
	}
	last := len(rows) - 1
	styler.addTable([]string{"Cost term", "MUSD/year", "Share (%)"}, []float64{0.4, 0.3, 0.3}, rows,
		func(r, _ int) string {
			if r == last {
				return "tableCellStrong"
			}
			return "tableCell"
		})
	styler.addSpacer(3)
	styler.writeParagraph(fmt.Sprintf("Annual production: %.0f t ethylene", res.AnnualProduction), "normal", "L")

	if len(sweep) > 0 {
		styler.newPage()
		styler.writeParagraph("Ethane Price Sensitivity", "h2", "L")
		sweepRows := make([][]string, len(sweep))
		for i, p := range sweep {
			sweepRows[i] = []string{strconv.FormatFloat(p.EthanePrice, 'f', 0, 64), strconv.FormatFloat(p.MSP, 'f', 2, 64)}
		}
		styler.addTable([]string{"Ethane (USD/t)", "MSP (USD/t)"}, []float64{0.5, 0.5}, sweepRows, nil)
		if len(sweepChart) > 0 {
			styler.addSpacer(4)
			w := pdfContentWidth * 0.55
			styler.addImage(sweepChart, ImageSweep, w, w*0.75, "MSP versus ethane price")
		}
	}

	return output(pdf)
}
