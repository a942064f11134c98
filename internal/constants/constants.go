// Package constants provides named constants used throughout the simulator.
// This centralizes magic numbers for better maintainability and documentation.
package constants

// Random number generation defaults
const (
	// DefaultSeed is the fixed seed used when none is configured.
	// Runs with the same seed, weights, trial count and input reproduce
	// byte-identical output.
	DefaultSeed uint64 = 1234

	// DefaultRNG is the default uniform draw algorithm.
	DefaultRNG = "mt19937"
)

// Input limits
const (
	// DefaultMaxLineBytes bounds the length of a single input record,
	// including the trailing newline.
	DefaultMaxLineBytes = 1024

	// MinLineBytes is the smallest configurable record buffer.
	MinLineBytes = 16
)

// Resource limits
const (
	// DefaultMaxCells caps trials*groups for the accumulator matrix.
	// Each cell holds three float64 sums (24 bytes), so the default
	// allows roughly 6GB of accumulator state.
	DefaultMaxCells = 1 << 28

	// MaxChoicesTableSize is the largest expanded choices table the
	// integer-count sampler will build before falling back to the CDF.
	MaxChoicesTableSize = 1 << 20

	// ShardBatchSize is the number of entities handed to each worker at a
	// time when the trial axis is sharded.
	ShardBatchSize = 256
)

// Exit codes reported by the simulate command.
const (
	ExitOK          = 0
	ExitUsage       = 1
	ExitParse       = 2
	ExitResource    = 3
	ExitInterrupted = 130
)
