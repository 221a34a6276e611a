package types

import (
	"fmt"
	"strings"
)

// Status is the binary attendance outcome of one record.
type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
)

// Valid reports whether s is one of the canonical statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent:
		return true
	default:
		return false
	}
}

// ParseStatus accepts any casing and surrounding whitespace and returns the
// canonical spelling.
func ParseStatus(v string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "present":
		return StatusPresent, nil
	case "absent":
		return StatusAbsent, nil
	}
	return "", &DataFormatError{Field: "status", Value: v, Err: errUnknownEnum}
}

// Gender of a student as recorded in the roster.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// ParseGender returns the canonical spelling of v.
func ParseGender(v string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "male":
		return GenderMale, nil
	case "female":
		return GenderFemale, nil
	}
	return "", &DataFormatError{Field: "gender", Value: v, Err: errUnknownEnum}
}

// Year is the study year of a student: 1st through 4th.
type Year string

const (
	Year1 Year = "1st"
	Year2 Year = "2nd"
	Year3 Year = "3rd"
	Year4 Year = "4th"
)

// Years lists the valid study years in ascending order.
var Years = []Year{Year1, Year2, Year3, Year4}

// ParseYear accepts the canonical form ("2nd") or a bare number ("2").
func ParseYear(v string) (Year, error) {
	s := strings.ToLower(strings.TrimSpace(v))
	for i, y := range Years {
		if s == string(y) || s == fmt.Sprint(i+1) {
			return y, nil
		}
	}
	return "", &DataFormatError{Field: "year", Value: v, Err: errUnknownEnum}
}
