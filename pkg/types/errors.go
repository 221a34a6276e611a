package types

import (
	"errors"
	"fmt"
)

var errUnknownEnum = errors.New("unknown value")

// DataFormatError reports a malformed field value in a student or attendance
// row. It is never fatal: the offending row is skipped for the aggregation
// that needed the value and the error is surfaced to the caller.
type DataFormatError struct {
	// Field is the column name, e.g. "date" or "status".
	Field string
	// Value is the raw text that failed to parse.
	Value string
	// Line is the 1-based line in the backing file, or 0 when unknown.
	Line int
	// Roll identifies the record owner when known.
	Roll string
	Err  error
}

func (e *DataFormatError) Error() string {
	msg := fmt.Sprintf("invalid %s %q", e.Field, e.Value)
	if e.Roll != "" {
		msg += fmt.Sprintf(" (roll %s)", e.Roll)
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataFormatError) Unwrap() error { return e.Err }
