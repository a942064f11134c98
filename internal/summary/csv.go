package summary

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/monetate/monte-carlo-simulator/internal/engine"
)

type csvRow struct {
	trial, group int
	cell         engine.Cell
}

// ReadCSV loads canonical trial,group,sum_y0,sum_y1,sum_y2 output back into
// a matrix. Dimensions are taken from the largest indices seen; every
// (trial, group) pair must appear exactly once.
func ReadCSV(r io.Reader) (*engine.Matrix, error) {
	sc := bufio.NewScanner(r)
	var rows []csvRow
	trials, groups := 0, 0
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		row, err := parseRow(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		trials = max(trials, row.trial+1)
		groups = max(groups, row.group+1)
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no result rows")
	}
	if len(rows) != trials*groups {
		return nil, fmt.Errorf("got %d rows, want %d for %d trials x %d groups",
			len(rows), trials*groups, trials, groups)
	}

	m, err := engine.NewMatrix(trials, groups, 0)
	if err != nil {
		return nil, err
	}
	seen := make([]bool, trials*groups)
	for _, row := range rows {
		i := row.trial*groups + row.group
		if seen[i] {
			return nil, fmt.Errorf("duplicate row for trial %d group %d", row.trial, row.group)
		}
		seen[i] = true
		m.Set(row.trial, row.group, row.cell)
	}
	return m, nil
}

func parseRow(text string) (csvRow, error) {
	f := strings.Split(text, ",")
	if len(f) != 5 {
		return csvRow{}, fmt.Errorf("expected 5 fields, got %d", len(f))
	}
	var row csvRow
	var err error
	if row.trial, err = strconv.Atoi(f[0]); err != nil || row.trial < 0 {
		return csvRow{}, fmt.Errorf("invalid trial %q", f[0])
	}
	if row.group, err = strconv.Atoi(f[1]); err != nil || row.group < 0 {
		return csvRow{}, fmt.Errorf("invalid group %q", f[1])
	}
	sums := [3]*float64{&row.cell.Y0, &row.cell.Y1, &row.cell.Y2}
	for i, p := range sums {
		if *p, err = strconv.ParseFloat(f[2+i], 64); err != nil {
			return csvRow{}, fmt.Errorf("invalid sum_y%d %q", i, f[2+i])
		}
	}
	return row, nil
}
