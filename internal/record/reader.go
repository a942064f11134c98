package record

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/monetate/monte-carlo-simulator/internal/constants"
)

// Reader streams Summaries from an input, one line at a time.
type Reader struct {
	scanner *bufio.Scanner
	profile constants.Profile
	maxLine int
	line    int
}

// NewReader creates a Reader over r. maxLineBytes bounds a single record
// including its newline; values below constants.MinLineBytes are raised to it.
func NewReader(r io.Reader, profile constants.Profile, maxLineBytes int) *Reader {
	if maxLineBytes < constants.MinLineBytes {
		maxLineBytes = constants.MinLineBytes
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, min(maxLineBytes, 4096)), maxLineBytes)
	return &Reader{scanner: sc, profile: profile, maxLine: maxLineBytes}
}

// Next returns the next record, or io.EOF when the input is exhausted.
// Blank lines are skipped.
func (r *Reader) Next() (Summary, error) {
	for r.scanner.Scan() {
		r.line++
		text := r.scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		s, err := ParseLine(text, r.profile)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Line = r.line
			}
			return Summary{}, err
		}
		return s, nil
	}

	if err := r.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return Summary{}, &ParseError{
				Line:  r.line + 1,
				Field: "record",
				Err:   fmt.Errorf("%w: exceeds %d bytes", ErrLineTooLong, r.maxLine),
			}
		}
		return Summary{}, fmt.Errorf("reading input: %w", err)
	}
	return Summary{}, io.EOF
}

// Line returns the number of input lines consumed so far.
func (r *Reader) Line() int {
	return r.line
}
