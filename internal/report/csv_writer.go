package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/user/odhe_tea_go/internal/analysis"
)

// IndicesCSVHeader is the header row of the indices table.
var IndicesCSVHeader = []string{"Parameter", "S1", "ST"}

// RenderIndicesCSV writes one row per parameter in problem order. Values
// use the shortest representation that round-trips.
func RenderIndicesCSV(ix *analysis.Indices) ([]byte, error) {
	if ix == nil {
		return nil, fmt.Errorf("no sensitivity indices to write")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(IndicesCSVHeader); err != nil {
		return nil, err
	}
	for i, name := range ix.Names {
		row := []string{
			name,
			strconv.FormatFloat(ix.S1[i], 'g', -1, 64),
			strconv.FormatFloat(ix.ST[i], 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to encode indices CSV: %w", err)
	}
	return buf.Bytes(), nil
}
