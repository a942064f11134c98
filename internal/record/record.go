// Package record parses entity summary lines of the form
// "identifier,y0,y1,y2" and streams them from an input.
package record

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/monetate/monte-carlo-simulator/internal/constants"
)

// Summary is one entity's outcome values. The identifier field of the input
// record is discarded.
type Summary struct {
	Y0 float64
	Y1 float64
	Y2 float64
}

// ErrLineTooLong is wrapped by a ParseError when a record exceeds the
// configured line buffer.
var ErrLineTooLong = errors.New("line too long")

// ParseError reports an input record that could not be parsed.
type ParseError struct {
	// Line is the 1-based input line number, or 0 when unknown.
	Line int
	// Field names the offending field ("y0", "y1", "y2" or "record").
	Field string
	// Token is the offending text.
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	prefix := "record"
	if e.Line > 0 {
		prefix = fmt.Sprintf("line %d", e.Line)
	}
	if e.Field == "record" {
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	}
	return fmt.Sprintf("%s: %s: non numeric characters: %q", prefix, e.Field, e.Token)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var fieldNames = [3]string{"y0", "y1", "y2"}

// ParseLine parses one record. A trailing newline or carriage return is
// ignored. Under constants.ProfileCount y0 must be an unsigned 32-bit integer.
func ParseLine(line string, profile constants.Profile) (Summary, error) {
	line = strings.TrimRight(line, "\r\n")

	fields := strings.SplitN(line, ",", 4)
	if len(fields) < 4 {
		return Summary{}, &ParseError{
			Field: "record",
			Token: line,
			Err:   fmt.Errorf("expected 4 comma separated fields, got %d", len(fields)),
		}
	}

	var vals [3]float64
	for i, tok := range fields[1:] {
		v, err := parseField(i, tok, profile)
		if err != nil {
			return Summary{}, &ParseError{Field: fieldNames[i], Token: tok, Err: err}
		}
		vals[i] = v
	}
	return Summary{Y0: vals[0], Y1: vals[1], Y2: vals[2]}, nil
}

func parseField(i int, tok string, profile constants.Profile) (float64, error) {
	tok = strings.TrimSpace(tok)
	if i == 0 && profile == constants.ProfileCount {
		n, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			return 0, err
		}
		return float64(n), nil
	}
	return strconv.ParseFloat(tok, 64)
}
