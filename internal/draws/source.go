// Package draws provides reproducible batches of uniform draws in [0,1).
//
// Generator state is an explicit value. Each shard of a parallel run owns
// its own Source, seeded at a fixed offset from the base seed, so runs are
// reproducible without any shared generator.
package draws

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mathext/prng"
)

// Source fills slices with independent uniform draws in [0,1).
// A Source is not safe for concurrent use; give each goroutine its own.
type Source interface {
	Fill(dst []float64)
}

// Algorithm names a pseudo-random generator.
type Algorithm string

const (
	MT19937    Algorithm = "mt19937"
	MT19937_64 Algorithm = "mt19937_64"
	Xoshiro    Algorithm = "xoshiro256**"
	SplitMix64 Algorithm = "splitmix64"
)

var generators = map[Algorithm]func(seed uint64) rand.Source{
	MT19937: func(seed uint64) rand.Source {
		src := prng.NewMT19937()
		src.Seed(seed)
		return src
	},
	MT19937_64: func(seed uint64) rand.Source {
		src := prng.NewMT19937_64()
		src.Seed(seed)
		return src
	},
	Xoshiro: func(seed uint64) rand.Source {
		return prng.NewXoshiro256starstar(seed)
	},
	SplitMix64: func(seed uint64) rand.Source {
		return prng.NewSplitMix64(seed)
	},
}

// Algorithms returns the supported algorithm names in sorted order.
func Algorithms() []string {
	names := make([]string, 0, len(generators))
	for a := range generators {
		names = append(names, string(a))
	}
	sort.Strings(names)
	return names
}

// Valid reports whether a names a supported generator.
func (a Algorithm) Valid() bool {
	_, ok := generators[a]
	return ok
}

// ShardSeed returns the seed used by shard k of a run seeded with seed.
// Shard 0 uses the base seed unchanged.
func ShardSeed(seed uint64, shard int) uint64 {
	return seed + uint64(shard)
}

// PRNG is a Source backed by one of the gonum generators.
type PRNG struct {
	rng *rand.Rand
}

// New creates the generator for shard of a run seeded with seed.
func New(algorithm Algorithm, seed uint64, shard int) (*PRNG, error) {
	gen, ok := generators[algorithm]
	if !ok {
		return nil, fmt.Errorf("unknown rng algorithm %q (valid: %v)", algorithm, Algorithms())
	}
	if shard < 0 {
		return nil, fmt.Errorf("shard must be non-negative, got %d", shard)
	}
	return &PRNG{rng: rand.New(gen(ShardSeed(seed, shard)))}, nil
}

// Fill implements Source. Each value uses 53 random mantissa bits.
func (p *PRNG) Fill(dst []float64) {
	for i := range dst {
		dst[i] = p.rng.Float64()
	}
}

// Replay is a Source that returns the same batch of draws on every call.
// If dst is longer than the batch the batch is repeated.
type Replay struct {
	batch []float64
}

// NewReplay creates a Replay source. Draws outside [0,1) are rejected.
func NewReplay(batch []float64) (*Replay, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("replay batch must not be empty")
	}
	for i, u := range batch {
		if !(u >= 0 && u < 1) {
			return nil, fmt.Errorf("replay draw %d is %v, must be in [0,1)", i, u)
		}
	}
	return &Replay{batch: append([]float64(nil), batch...)}, nil
}

// Fill implements Source.
func (r *Replay) Fill(dst []float64) {
	for i := range dst {
		dst[i] = r.batch[i%len(r.batch)]
	}
}
