package distribution

import (
	"errors"
	"fmt"
	"sort"

	"github.com/monetate/monte-carlo-simulator/internal/constants"
)

// Strategy names a group selection strategy.
type Strategy string

const (
	// StrategyCDF selects groups by cumulative distribution lookup.
	StrategyCDF Strategy = "cdf"

	// StrategyChoices selects groups from an expanded table of integer counts.
	StrategyChoices Strategy = "choices"
)

// Search names the CDF lookup method.
type Search string

const (
	// SearchLinear scans the CDF from the first group upward.
	SearchLinear Search = "linear"

	// SearchBinary bisects the CDF. It selects the same group as SearchLinear.
	SearchBinary Search = "binary"
)

// ErrChoicesTableTooLarge is returned when expanding integer counts would
// exceed constants.MaxChoicesTableSize entries.
var ErrChoicesTableTooLarge = errors.New("choices table too large")

// Sampler maps a uniform draw in [0,1) to a group index.
// Implementations are read-only after construction and safe for concurrent use.
type Sampler interface {
	// Group returns the group selected by draw u.
	Group(u float64) int
	// Groups returns the number of groups.
	Groups() int
}

// CDFSampler selects the smallest group g with cdf[g] >= u, clamped to the
// last group.
type CDFSampler struct {
	cdf    CDF
	search Search
}

// NewCDFSampler creates a sampler over cdf. An empty search defaults to
// SearchLinear.
func NewCDFSampler(cdf CDF, search Search) *CDFSampler {
	if search == "" {
		search = SearchLinear
	}
	return &CDFSampler{cdf: cdf, search: search}
}

// Group implements Sampler.
func (s *CDFSampler) Group(u float64) int {
	last := len(s.cdf) - 1
	if s.search == SearchBinary {
		g := sort.SearchFloat64s(s.cdf, u)
		if g > last {
			return last
		}
		return g
	}

	// Strict < keeps a draw equal to cdf[g] in group g.
	g := 0
	for g < last && s.cdf[g] < u {
		g++
	}
	return g
}

// Groups implements Sampler.
func (s *CDFSampler) Groups() int {
	return len(s.cdf)
}

// CDF returns the underlying distribution.
func (s *CDFSampler) CDF() CDF {
	return s.cdf
}

// ChoicesSampler replicates each group index count times into a flat table
// and picks table[floor(u*len)]. A draw on an exact boundary goes to the
// upper group, unlike CDFSampler; the boundaries have probability zero.
type ChoicesSampler struct {
	table  []int32
	groups int
}

// NewChoicesSampler expands counts into a choices table.
func NewChoicesSampler(counts []uint64) (*ChoicesSampler, error) {
	if len(counts) == 0 {
		return nil, fmt.Errorf("%w: no groups", ErrInvalidDistribution)
	}
	var total uint64
	for _, c := range counts {
		total += c
		if total > constants.MaxChoicesTableSize {
			return nil, fmt.Errorf("%w: more than %d entries", ErrChoicesTableTooLarge, constants.MaxChoicesTableSize)
		}
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: total count must be positive", ErrInvalidDistribution)
	}

	table := make([]int32, 0, total)
	for g, c := range counts {
		for range c {
			table = append(table, int32(g))
		}
	}
	return &ChoicesSampler{table: table, groups: len(counts)}, nil
}

// Group implements Sampler.
func (s *ChoicesSampler) Group(u float64) int {
	i := int(u * float64(len(s.table)))
	if i >= len(s.table) {
		i = len(s.table) - 1
	} else if i < 0 {
		i = 0
	}
	return int(s.table[i])
}

// Groups implements Sampler.
func (s *ChoicesSampler) Groups() int {
	return s.groups
}

// Options configures New.
type Options struct {
	Strategy Strategy
	Search   Search
	// Weights are required for StrategyCDF.
	Weights Weights
	// Counts are required for StrategyChoices. When nil the weights must be
	// whole numbers and are converted.
	Counts []uint64
}

// New builds the sampler selected by opts. StrategyChoices falls back to a
// CDF sampler when the expanded table would be too large.
func New(opts Options) (Sampler, error) {
	switch opts.Strategy {
	case StrategyCDF, "":
		cdf, err := BuildCDF(opts.Weights)
		if err != nil {
			return nil, err
		}
		return NewCDFSampler(cdf, opts.Search), nil

	case StrategyChoices:
		counts := opts.Counts
		if counts == nil {
			var err error
			if counts, err = wholeCounts(opts.Weights); err != nil {
				return nil, err
			}
		}
		s, err := NewChoicesSampler(counts)
		if errors.Is(err, ErrChoicesTableTooLarge) {
			cdf, cerr := BuildCDF(CountsToWeights(counts))
			if cerr != nil {
				return nil, cerr
			}
			return NewCDFSampler(cdf, opts.Search), nil
		}
		if err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown sampling strategy %q", opts.Strategy)
	}
}

// wholeCounts converts weights to counts, rejecting fractional values.
func wholeCounts(w Weights) ([]uint64, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	counts := make([]uint64, len(w))
	for i, v := range w {
		if v != float64(uint64(v)) {
			return nil, fmt.Errorf("%w: choices strategy needs whole counts, weight %d is %g", ErrInvalidDistribution, i, v)
		}
		counts[i] = uint64(v)
	}
	return counts, nil
}
