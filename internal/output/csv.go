package output

import (
	"bufio"
	"io"
	"strconv"

	"github.com/monetate/monte-carlo-simulator/internal/constants"
	"github.com/monetate/monte-carlo-simulator/internal/engine"
)

// CSVWriter writes "trial,group,sum_y0,sum_y1,sum_y2" lines. Sums are
// printed with six decimals; under constants.ProfileCount sum_y0 is printed
// as an integer.
type CSVWriter struct {
	w       io.Writer
	profile constants.Profile
}

// NewCSVWriter creates a CSVWriter.
func NewCSVWriter(w io.Writer, profile constants.Profile) *CSVWriter {
	return &CSVWriter{w: w, profile: profile}
}

// Write implements Writer. Output is buffered and flushed once at the end.
func (c *CSVWriter) Write(m *engine.Matrix) error {
	bw := bufio.NewWriterSize(c.w, 64*1024)
	line := make([]byte, 0, 128)

	err := m.Each(func(trial, group int, cell engine.Cell) error {
		line = AppendCSVRow(line[:0], trial, group, cell, c.profile)
		_, err := bw.Write(line)
		return err
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

// AppendCSVRow appends one newline-terminated output row to dst.
func AppendCSVRow(dst []byte, trial, group int, cell engine.Cell, profile constants.Profile) []byte {
	dst = strconv.AppendInt(dst, int64(trial), 10)
	dst = append(dst, ',')
	dst = strconv.AppendInt(dst, int64(group), 10)
	dst = append(dst, ',')
	if profile == constants.ProfileCount {
		dst = strconv.AppendFloat(dst, cell.Y0, 'f', 0, 64)
	} else {
		dst = strconv.AppendFloat(dst, cell.Y0, 'f', 6, 64)
	}
	dst = append(dst, ',')
	dst = strconv.AppendFloat(dst, cell.Y1, 'f', 6, 64)
	dst = append(dst, ',')
	dst = strconv.AppendFloat(dst, cell.Y2, 'f', 6, 64)
	return append(dst, '\n')
}
