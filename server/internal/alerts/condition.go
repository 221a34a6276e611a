package alerts

import (
	"strconv"
	"strings"
)

// evalCondition evaluates a rule condition string against one student.
//
// Supported expressions (field operator value):
//
//	percentage < 60
//	present <= 10
//	absent >= 5
//	total > 0
//	severity >= 2
//	label == CRITICAL
//	label != Not Eligible
//
// Returns (fires bool, triggering value float64).
// Returns (false, 0) if the expression cannot be parsed or the field is unknown.
func evalCondition(cond string, s Student) (bool, float64) {
	parts := strings.Fields(cond)
	if len(parts) < 3 {
		return false, 0
	}
	field, op, rhs := parts[0], parts[1], strings.Join(parts[2:], " ")

	if field == "label" {
		switch op {
		case "==":
			return s.Label == rhs, s.Percentage
		case "!=":
			return s.Label != rhs, s.Percentage
		}
		return false, 0
	}

	v, ok := numericField(field, s)
	if !ok {
		return false, 0
	}
	threshold, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return false, 0
	}
	return compareFloat(v, op, threshold), v
}

// numericField maps a field name to its value for s.
func numericField(field string, s Student) (float64, bool) {
	switch field {
	case "percentage":
		return s.Percentage, true
	case "present":
		return float64(s.Present), true
	case "absent":
		return float64(s.Total - s.Present), true
	case "total":
		return float64(s.Total), true
	case "severity":
		return float64(s.Severity), true
	default:
		return 0, false
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	case "!=":
		return v != threshold
	default:
		return false
	}
}
