package report

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/user/odhe_tea_go/internal/analysis"
)

// ErrIO marks a failure to create the output directory or write a file.
var ErrIO = errors.New("report: output could not be written")

// IOError records which path failed.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrIO, e.Path, e.Err)
}

// Unwrap exposes both ErrIO and the underlying filesystem error.
func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}

// Output file names.
const (
	IndicesCSVFile = "odhe_sensitivity_indices.csv"
	BarPlotFile    = "odhe_sensitivity_plot.png"
	HeatmapFile    = "odhe_sensitivity_s2_heatmap.png"
	PDFFile        = "odhe_sensitivity_report.pdf"
)

// Artifacts lists the paths written by a run.
type Artifacts struct {
	IndicesCSV string `json:"indices_csv,omitempty"`
	BarPlot    string `json:"bar_plot"`
	Heatmap    string `json:"heatmap,omitempty"`
	PDF        string `json:"pdf,omitempty"`
}

// Paths returns the written paths in write order.
func (a Artifacts) Paths() []string {
	var out []string
	if a.IndicesCSV != "" {
		out = append(out, a.IndicesCSV)
	}
	out = append(out, a.BarPlot)
	if a.Heatmap != "" {
		out = append(out, a.Heatmap)
	}
	if a.PDF != "" {
		out = append(out, a.PDF)
	}
	return out
}

// Reporter persists sensitivity results to Dir. SkipCSV leaves the indices
// table alone, for runs whose input already is that table.
type Reporter struct {
	Dir     string
	PDF     bool
	SkipCSV bool
	Logger  *slog.Logger
}

type pendingFile struct {
	name string
	data []byte
}

// Write renders every artifact in memory, then writes them. Either all
// files are written or, on failure, the ones already written are removed.
func (r *Reporter) Write(info RunInfo, ix *analysis.Indices) (Artifacts, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var files []pendingFile
	if !r.SkipCSV {
		csvBytes, err := RenderIndicesCSV(ix)
		if err != nil {
			return Artifacts{}, err
		}
		files = append(files, pendingFile{IndicesCSVFile, csvBytes})
	}
	barPNG, err := CreateIndicesBarPlot(ix)
	if err != nil {
		return Artifacts{}, err
	}
	files = append(files, pendingFile{BarPlotFile, barPNG})
	images := map[string][]byte{ImageIndices: barPNG}

	if len(ix.S2) > 0 {
		heatmap, err := CreateSecondOrderHeatmap(ix)
		if err != nil {
			return Artifacts{}, err
		}
		files = append(files, pendingFile{HeatmapFile, heatmap})
		images[ImageS2Heatmap] = heatmap
	}
	if r.PDF {
		doc, err := BuildSensitivityPDF(info, ix, images)
		if err != nil {
			return Artifacts{}, err
		}
		files = append(files, pendingFile{PDFFile, doc})
	}

	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return Artifacts{}, &IOError{Path: r.Dir, Err: err}
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(r.Dir, f.name)
		if err := os.WriteFile(path, f.data, 0o644); err != nil {
			for _, p := range written {
				if rmErr := os.Remove(p); rmErr != nil {
					logger.Warn("could not remove partial output", "path", p, "error", rmErr)
				}
			}
			return Artifacts{}, &IOError{Path: path, Err: err}
		}
		written = append(written, path)
		logger.Debug("wrote artifact", "path", path, "bytes", len(f.data))
	}

	a := Artifacts{BarPlot: filepath.Join(r.Dir, BarPlotFile)}
	if !r.SkipCSV {
		a.IndicesCSV = filepath.Join(r.Dir, IndicesCSVFile)
	}
	if len(ix.S2) > 0 {
		a.Heatmap = filepath.Join(r.Dir, HeatmapFile)
	}
	if r.PDF {
		a.PDF = filepath.Join(r.Dir, PDFFile)
	}
	return a, nil
}
