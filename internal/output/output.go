// Package output serializes a completed accumulator matrix.
//
// Rows are emitted trial-major: all groups of trial 0, then trial 1, and so
// on, one row per (trial, group) pair.
package output

import (
	"fmt"
	"io"

	"github.com/monetate/monte-carlo-simulator/internal/constants"
	"github.com/monetate/monte-carlo-simulator/internal/engine"
)

// Format names an output encoding.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatArrow Format = "arrow"
)

// Writer serializes a matrix.
type Writer interface {
	Write(m *engine.Matrix) error
}

// New returns the writer for format. An empty format selects CSV.
func New(format Format, w io.Writer, profile constants.Profile) (Writer, error) {
	switch format {
	case FormatCSV, "":
		return NewCSVWriter(w, profile), nil
	case FormatArrow:
		return NewArrowWriter(w, profile), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (valid: csv, arrow)", format)
	}
}
