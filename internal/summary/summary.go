// Package summary computes per-group statistics over the trials of a run.
package summary

import (
	"gonum.org/v1/gonum/stat"

	"github.com/monetate/monte-carlo-simulator/internal/engine"
)

// Moments is the across-trial mean and sample standard deviation of one sum.
type Moments struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// GroupStats describes how one group's sums vary under re-randomization.
type GroupStats struct {
	Group int     `json:"group"`
	Y0    Moments `json:"sum_y0"`
	Y1    Moments `json:"sum_y1"`
	Y2    Moments `json:"sum_y2"`
	// Ratio is the mean of sum_y1/sum_y0 over trials where sum_y0 > 0,
	// or 0 when there are none.
	Ratio float64 `json:"ratio"`
	// Empty counts trials where the group received no weight in y0.
	Empty int `json:"empty_trials"`
}

// Summarize returns one GroupStats per group of m.
func Summarize(m *engine.Matrix) []GroupStats {
	trials, groups := m.Trials(), m.Groups()
	y0 := make([]float64, trials)
	y1 := make([]float64, trials)
	y2 := make([]float64, trials)
	ratios := make([]float64, 0, trials)

	out := make([]GroupStats, groups)
	for g := 0; g < groups; g++ {
		ratios = ratios[:0]
		for t := 0; t < trials; t++ {
			c := m.At(t, g)
			y0[t], y1[t], y2[t] = c.Y0, c.Y1, c.Y2
			if c.Y0 > 0 {
				ratios = append(ratios, c.Y1/c.Y0)
			}
		}
		gs := GroupStats{
			Group: g,
			Y0:    moments(y0),
			Y1:    moments(y1),
			Y2:    moments(y2),
			Empty: trials - len(ratios),
		}
		if len(ratios) > 0 {
			gs.Ratio = stat.Mean(ratios, nil)
		}
		out[g] = gs
	}
	return out
}

func moments(x []float64) Moments {
	if len(x) < 2 {
		return Moments{Mean: stat.Mean(x, nil)}
	}
	mean, std := stat.MeanStdDev(x, nil)
	return Moments{Mean: mean, StdDev: std}
}
