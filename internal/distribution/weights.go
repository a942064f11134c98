package distribution

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Weights holds one non-negative weight per group. The group identity is
// its index.
type Weights []float64

// CDF is the cumulative distribution over groups: cdf[g] is the sum of
// weights[0..g] divided by the total weight.
type CDF []float64

// ParseWeights parses one weight per argument.
func ParseWeights(args []string) (Weights, error) {
	w := make(Weights, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return nil, &ParseError{Index: i, Token: a, Err: err}
		}
		w[i] = v
	}
	return w, nil
}

// ParseCounts parses one non-negative integer count per argument.
func ParseCounts(args []string) ([]uint64, error) {
	c := make([]uint64, len(args))
	for i, a := range args {
		v, err := strconv.ParseUint(strings.TrimSpace(a), 10, 64)
		if err != nil {
			return nil, &ParseError{Index: i, Token: a, Err: err}
		}
		c[i] = v
	}
	return c, nil
}

// CountsToWeights converts integer counts to weights.
func CountsToWeights(counts []uint64) Weights {
	w := make(Weights, len(counts))
	for i, c := range counts {
		w[i] = float64(c)
	}
	return w
}

// Validate checks that the weights can form a distribution.
func (w Weights) Validate() error {
	if len(w) == 0 {
		return fmt.Errorf("%w: no groups", ErrInvalidDistribution)
	}
	for i, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: weight %d is not finite", ErrInvalidDistribution, i)
		}
		if v < 0 {
			return fmt.Errorf("%w: weight %d is negative (%g)", ErrInvalidDistribution, i, v)
		}
	}
	total := floats.Sum(w)
	if !(total > 0) || math.IsInf(total, 0) {
		return fmt.Errorf("%w: total weight must be positive and finite, got %g", ErrInvalidDistribution, total)
	}
	return nil
}

// BuildCDF computes the cumulative distribution for w.
//
// Given weights [33, 33, 33] the result is [0.3333, 0.6667, 1.0000].
func BuildCDF(w Weights) (CDF, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	cdf := floats.CumSum(make([]float64, len(w)), w)
	// The running sum's last entry is the total, so cdf[len-1] is exactly 1.
	total := cdf[len(cdf)-1]
	for g := range cdf {
		cdf[g] /= total
	}
	return CDF(cdf), nil
}

// Groups returns the number of groups.
func (c CDF) Groups() int {
	return len(c)
}

// Probabilities returns the per-group selection probability implied by c.
func (c CDF) Probabilities() []float64 {
	p := make([]float64, len(c))
	prev := 0.0
	for g, v := range c {
		p[g] = v - prev
		prev = v
	}
	return p
}
