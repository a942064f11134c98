package distribution

import (
	"errors"
	"fmt"
)

// ErrInvalidDistribution indicates that a set of weights cannot form a
// probability distribution: no groups, a negative or non-finite weight,
// or a non-positive total.
var ErrInvalidDistribution = errors.New("invalid distribution")

// ParseError reports a command-line weight or count that is not valid
// numeric text.
type ParseError struct {
	// Index is the position of the token among the weight arguments.
	Index int
	// Token is the offending text.
	Token string
	// Err is the underlying strconv error.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("weight %d: non numeric characters: %q", e.Index, e.Token)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
