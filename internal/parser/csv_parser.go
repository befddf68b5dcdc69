package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrNoIndices is returned when a file holds no usable parameter rows.
var ErrNoIndices = errors.New("parser: no sensitivity indices found")

// expectedHeader is matched case-insensitively against the first record.
var expectedHeader = []string{"parameter", "s1", "st"}

func isHeader(row []string) bool {
	if len(row) < len(expectedHeader) {
		return false
	}
	for i, want := range expectedHeader {
		if strings.ToLower(strings.TrimSpace(row[i])) != want {
			return false
		}
	}
	return true
}

func parseValue(p *ParsedIndices, raw, column, name string, line int) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		p.warnf("Line %d: %s for '%s' is not a number (%q). Using NaN.", line, column, name, raw)
		return math.NaN()
	}
	return v
}

// ParseIndicesCSV reads an indices table written by the reporter.
func ParseIndicesCSV(path string) (*ParsedIndices, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()
	return ParseIndices(file)
}

// ParseIndices reads "Parameter,S1,ST" records from r. Malformed rows are
// skipped or filled with NaN and reported in ParseErrors with their file
// line; only a missing header or an empty table is fatal.
func ParseIndices(r io.Reader) (*ParsedIndices, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	parsed := NewParsedIndices()
	headerSeen := false
	seen := make(map[string]int)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV data: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		if !headerSeen {
			if !isHeader(row) {
				return nil, fmt.Errorf("line %d: expected header Parameter,S1,ST, got %q", line, strings.Join(row, ","))
			}
			headerSeen = true
			continue
		}

		name := strings.TrimSpace(row[0])
		if name == "" {
			parsed.warnf("Line %d: empty parameter name, row skipped.", line)
			continue
		}
		if len(row) < 3 {
			parsed.warnf("Line %d: '%s' has %d fields, expected 3. Row skipped.", line, name, len(row))
			continue
		}
		if len(row) > 3 {
			parsed.warnf("Line %d: '%s' has %d fields, extra columns ignored.", line, name, len(row))
		}
		if prev, dup := seen[name]; dup {
			parsed.warnf("Line %d: '%s' already defined on line %d, row skipped.", line, name, prev)
			continue
		}
		seen[name] = line

		ix := parsed.Indices
		ix.Names = append(ix.Names, name)
		ix.S1 = append(ix.S1, parseValue(parsed, row[1], "S1", name, line))
		ix.ST = append(ix.ST, parseValue(parsed, row[2], "ST", name, line))
	}

	if !headerSeen {
		return nil, fmt.Errorf("%w: empty file", ErrNoIndices)
	}
	if len(parsed.Indices.Names) == 0 {
		return nil, ErrNoIndices
	}
	return parsed, nil
}
