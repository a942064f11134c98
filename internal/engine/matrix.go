package engine

import (
	"errors"
	"fmt"

	"github.com/monetate/monte-carlo-simulator/internal/record"
)

// ErrResourceExhausted indicates the accumulator matrix would exceed the
// configured cell limit.
var ErrResourceExhausted = errors.New("accumulator too large")

// Cell holds the running sums of one (trial, group) pair.
type Cell struct {
	Y0 float64
	Y1 float64
	Y2 float64
}

// Add accumulates an entity's values into c.
func (c *Cell) Add(s record.Summary) {
	c.Y0 += s.Y0
	c.Y1 += s.Y1
	c.Y2 += s.Y2
}

// Matrix is a dense trials x groups grid of cells stored trial-major.
type Matrix struct {
	trials int
	groups int
	cells  []Cell
}

// NewMatrix allocates a zeroed matrix. maxCells <= 0 disables the size check.
func NewMatrix(trials, groups, maxCells int) (*Matrix, error) {
	if trials <= 0 || groups <= 0 {
		return nil, fmt.Errorf("matrix dimensions must be positive, got %d x %d", trials, groups)
	}
	if trials > int(^uint(0)>>1)/groups {
		return nil, fmt.Errorf("%w: %d trials x %d groups overflows", ErrResourceExhausted, trials, groups)
	}
	if n := trials * groups; maxCells > 0 && n > maxCells {
		return nil, fmt.Errorf("%w: %d trials x %d groups = %d cells, limit %d",
			ErrResourceExhausted, trials, groups, n, maxCells)
	}
	return &Matrix{
		trials: trials,
		groups: groups,
		cells:  make([]Cell, trials*groups),
	}, nil
}

// Trials returns the number of trials.
func (m *Matrix) Trials() int { return m.trials }

// Groups returns the number of groups.
func (m *Matrix) Groups() int { return m.groups }

// Len returns trials * groups.
func (m *Matrix) Len() int { return len(m.cells) }

// At returns the cell for (trial, group).
func (m *Matrix) At(trial, group int) Cell {
	return m.cells[trial*m.groups+group]
}

// Set overwrites the cell for (trial, group).
func (m *Matrix) Set(trial, group int, c Cell) {
	m.cells[trial*m.groups+group] = c
}

// Row returns the cells of one trial. The slice aliases the matrix.
func (m *Matrix) Row(trial int) []Cell {
	return m.cells[trial*m.groups : (trial+1)*m.groups]
}

// Each calls fn for every cell in trial-major order.
func (m *Matrix) Each(fn func(trial, group int, c Cell) error) error {
	for i := 0; i < m.trials; i++ {
		row := m.Row(i)
		for g := range row {
			if err := fn(i, g, row[g]); err != nil {
				return err
			}
		}
	}
	return nil
}

// TrialTotal sums one trial's cells across groups. Every trial of a run
// has the same total: the sum over all entities.
func (m *Matrix) TrialTotal(trial int) Cell {
	var t Cell
	for _, c := range m.Row(trial) {
		t.Y0 += c.Y0
		t.Y1 += c.Y1
		t.Y2 += c.Y2
	}
	return t
}

// Merge adds other into m elementwise.
func (m *Matrix) Merge(other *Matrix) error {
	if other.trials != m.trials || other.groups != m.groups {
		return fmt.Errorf("cannot merge %dx%d matrix into %dx%d",
			other.trials, other.groups, m.trials, m.groups)
	}
	for i := range m.cells {
		m.cells[i].Y0 += other.cells[i].Y0
		m.cells[i].Y1 += other.cells[i].Y1
		m.cells[i].Y2 += other.cells[i].Y2
	}
	return nil
}
