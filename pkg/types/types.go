package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used by the attendance file.
const DateLayout = "2006-01-02"

// ErrInvalidStudent wraps every Student validation failure. The
// validator.ValidationErrors underneath stays reachable with errors.As.
var ErrInvalidStudent = errors.New("invalid student")

// Student is one roster entry, keyed by Roll.
type Student struct {
	Roll       string `json:"roll" validate:"required,notblank"`
	Name       string `json:"name" validate:"required,notblank"`
	Gender     Gender `json:"gender" validate:"oneof=Male Female"`
	Department string `json:"department"`
	Year       Year   `json:"year" validate:"oneof=1st 2nd 3rd 4th"`
}

// Validate checks required fields and enum values.
func (s Student) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidStudent, err)
	}
	return nil
}

// Record is one attendance mark. Date stays in its raw textual form so that a
// malformed value can still be counted towards overall and per-subject
// percentages; Day parses it on demand.
type Record struct {
	Date    string `json:"date"`
	Roll    string `json:"roll"`
	Subject string `json:"subject"`
	Status  Status `json:"status"`
}

// Present reports whether the record counts as attended.
func (r Record) Present() bool { return r.Status == StatusPresent }

// Day parses Date. A malformed value yields a *DataFormatError.
func (r Record) Day() (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(r.Date))
	if err != nil {
		return time.Time{}, &DataFormatError{Field: "date", Value: r.Date, Roll: r.Roll, Err: err}
	}
	return t, nil
}
