package parser

import (
	"fmt"

	"github.com/user/odhe_tea_go/internal/analysis"
)

// ParsedIndices is an indices table read back from disk.
type ParsedIndices struct {
	Indices     *analysis.Indices
	ParseErrors []string // non-fatal problems, one message per offending row
}

// NewParsedIndices returns an empty result.
func NewParsedIndices() *ParsedIndices {
	return &ParsedIndices{
		Indices:     analysis.NewIndices(nil),
		ParseErrors: make([]string, 0),
	}
}

func (p *ParsedIndices) warnf(format string, args ...any) {
	p.ParseErrors = append(p.ParseErrors, fmt.Sprintf(format, args...))
}
