package analytics

import (
	"fmt"
	"strings"
)

// Preset policy names accepted by PolicyByName.
const (
	PolicyRisk        = "risk"
	PolicyEligibility = "eligibility"
	PolicyCustom      = "custom"
)

// Labels used by the preset policies.
const (
	LabelSafe     = "SAFE"
	LabelWarning  = "WARNING"
	LabelCritical = "CRITICAL"

	LabelEligible    = "Eligible"
	LabelConditional = "Conditional"
	LabelNotEligible = "Not Eligible"
)

// Band is one classification tier. A percentage belongs to the first band
// (in Policy order) whose Min it reaches.
type Band struct {
	Label string  `yaml:"label" json:"label"`
	Min   float64 `yaml:"min" json:"min"`
}

// Policy is an ordered set of bands with strictly descending minimums, the
// last of which is 0, so the bands partition [0, 100].
type Policy struct {
	Name  string `yaml:"name" json:"name"`
	Bands []Band `yaml:"bands" json:"bands"`
}

// Classification is the outcome of Policy.Classify.
type Classification struct {
	Label string `json:"label"`
	// Severity is the band index: 0 for the best band, increasing as the
	// percentage falls.
	Severity int `json:"severity"`
}

// ConfigurationError reports an unusable threshold policy. It is meant to
// stop the process at startup, never per call.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("policy %s: %s", e.Field, e.Reason)
}

// RiskPolicy is the canonical three-tier policy.
func RiskPolicy() Policy {
	return Policy{Name: PolicyRisk, Bands: []Band{
		{Label: LabelSafe, Min: 75},
		{Label: LabelWarning, Min: 60},
		{Label: LabelCritical, Min: 0},
	}}
}

// EligibilityPolicy is the exam-eligibility variant.
func EligibilityPolicy() Policy {
	return Policy{Name: PolicyEligibility, Bands: []Band{
		{Label: LabelEligible, Min: 85},
		{Label: LabelConditional, Min: 75},
		{Label: LabelNotEligible, Min: 0},
	}}
}

// PolicyByName resolves a preset. For PolicyCustom, bands must be supplied
// and are validated; presets ignore bands.
func PolicyByName(name string, bands []Band) (Policy, error) {
	var p Policy
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyRisk:
		p = RiskPolicy()
	case PolicyEligibility:
		p = EligibilityPolicy()
	case PolicyCustom:
		p = Policy{Name: PolicyCustom, Bands: append([]Band(nil), bands...)}
	default:
		return Policy{}, &ConfigurationError{Field: "name", Reason: fmt.Sprintf("unknown policy %q: want risk|eligibility|custom", name)}
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate checks that the bands partition [0, 100] with no gaps or overlaps.
func (p Policy) Validate() error {
	if len(p.Bands) < 2 {
		return &ConfigurationError{Field: "bands", Reason: fmt.Sprintf("need at least 2 bands, got %d", len(p.Bands))}
	}
	for i, b := range p.Bands {
		if strings.TrimSpace(b.Label) == "" {
			return &ConfigurationError{Field: fmt.Sprintf("bands[%d].label", i), Reason: "must not be empty"}
		}
		if b.Min < 0 || b.Min > 100 {
			return &ConfigurationError{Field: fmt.Sprintf("bands[%d].min", i), Reason: fmt.Sprintf("%.2f is out of range [0, 100]", b.Min)}
		}
		if i > 0 && b.Min >= p.Bands[i-1].Min {
			return &ConfigurationError{
				Field:  fmt.Sprintf("bands[%d].min", i),
				Reason: fmt.Sprintf("%.2f must be below the previous band's %.2f", b.Min, p.Bands[i-1].Min),
			}
		}
	}
	if last := p.Bands[len(p.Bands)-1]; last.Min != 0 {
		return &ConfigurationError{Field: fmt.Sprintf("bands[%d].min", len(p.Bands)-1), Reason: "last band must start at 0"}
	}
	return nil
}

// Classify maps pct to its band. Values below every minimum (including
// negatives and NaN) fall into the last band.
func (p Policy) Classify(pct float64) Classification {
	if len(p.Bands) == 0 {
		return Classification{}
	}
	for i, b := range p.Bands {
		if pct >= b.Min {
			return Classification{Label: b.Label, Severity: i}
		}
	}
	last := len(p.Bands) - 1
	return Classification{Label: p.Bands[last].Label, Severity: last}
}

// Labels returns the band labels in severity order.
func (p Policy) Labels() []string {
	out := make([]string, len(p.Bands))
	for i, b := range p.Bands {
		out[i] = b.Label
	}
	return out
}
