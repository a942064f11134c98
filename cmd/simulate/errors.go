package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/monetate/monte-carlo-simulator/internal/constants"
	"github.com/monetate/monte-carlo-simulator/internal/distribution"
	"github.com/monetate/monte-carlo-simulator/internal/engine"
	"github.com/monetate/monte-carlo-simulator/internal/record"
)

// usageError marks a bad invocation: missing arguments, a bad flag value,
// or an invalid config.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, a ...any) error {
	return &usageError{err: fmt.Errorf(format, a...)}
}

// argParseError reports a positional argument that is not numeric text.
type argParseError struct {
	name  string
	token string
	err   error
}

func (e *argParseError) Error() string {
	return fmt.Sprintf("%s: non numeric characters: %q", e.name, e.token)
}

func (e *argParseError) Unwrap() error { return e.err }

// dataError reports malformed stored or piped results.
type dataError struct {
	err error
}

func (e *dataError) Error() string { return e.err.Error() }
func (e *dataError) Unwrap() error { return e.err }

// ioError reports a failure reading input or writing results.
type ioError struct {
	op  string
	err error
}

func (e *ioError) Error() string { return e.op + ": " + e.err.Error() }
func (e *ioError) Unwrap() error { return e.err }

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var (
		ue  *usageError
		ape *argParseError
		de  *dataError
		dpe *distribution.ParseError
		rpe *record.ParseError
		ioe *ioError
	)
	switch {
	case err == nil:
		return constants.ExitOK
	case errors.Is(err, context.Canceled):
		return constants.ExitInterrupted
	case errors.As(err, &ue):
		return constants.ExitUsage
	case errors.As(err, &ape), errors.As(err, &dpe), errors.As(err, &rpe), errors.As(err, &de),
		errors.Is(err, distribution.ErrInvalidDistribution):
		return constants.ExitParse
	case errors.Is(err, engine.ErrResourceExhausted), errors.As(err, &ioe):
		return constants.ExitResource
	default:
		return constants.ExitUsage
	}
}
