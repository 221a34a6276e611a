package api

import (
	"fmt"
	"sort"

	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/analytics"
)

// Hint levels.
const (
	LevelOK       = "ok"
	LevelInfo     = "info"
	LevelWarning  = "warning"
	LevelCritical = "critical"
)

// Hint is one human-readable note about a student's attendance, shown next
// to the report.
//
// Key is stable, e.g. "overall" or "subject:Physics".
type Hint struct {
	Key    string   `json:"key"`
	Level  string   `json:"level"`
	Title  string   `json:"title"`
	Detail string   `json:"detail"`
	Value  *float64 `json:"value,omitempty"`
}

// levelFor maps a band index onto a hint level: the best band is ok, the
// worst is critical, anything in between is a warning.
func levelFor(p analytics.Policy, c analytics.Classification) string {
	switch {
	case c.Severity == 0:
		return LevelOK
	case c.Severity >= len(p.Bands)-1:
		return LevelCritical
	default:
		return LevelWarning
	}
}

var levelRank = map[string]int{LevelCritical: 0, LevelWarning: 1, LevelInfo: 2, LevelOK: 3}

// computeHints derives hints from a report: one for the overall figure and
// one per subject that falls outside the best band. Critical comes first.
func computeHints(rep analytics.Report, p analytics.Policy) []Hint {
	if rep.Total == 0 {
		return []Hint{{
			Key:    "no-records",
			Level:  LevelInfo,
			Title:  "No attendance yet",
			Detail: "No attendance has been recorded for this student, so every figure reads 0%.",
		}}
	}

	overall := rep.Percentage
	hints := []Hint{{
		Key:    "overall",
		Level:  levelFor(p, rep.Classification),
		Title:  rep.Classification.Label,
		Detail: fmt.Sprintf("Attended %d of %d classes (%.2f%%).", rep.Present, rep.Total, rep.Percentage),
		Value:  &overall,
	}}

	subjects := make([]string, 0, len(rep.Subjects))
	for s := range rep.Subjects {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)

	for _, s := range subjects {
		pct := rep.Subjects[s]
		c := p.Classify(pct)
		if c.Severity == 0 {
			continue
		}
		best := p.Bands[0]
		hints = append(hints, Hint{
			Key:    "subject:" + s,
			Level:  levelFor(p, c),
			Title:  fmt.Sprintf("%s: %s", s, c.Label),
			Detail: fmt.Sprintf("%s attendance is %.2f%%, below the %.0f%% needed for %s.", s, pct, best.Min, best.Label),
			Value:  &pct,
		})
	}

	sort.SliceStable(hints, func(i, j int) bool {
		return levelRank[hints[i].Level] < levelRank[hints[j].Level]
	})
	return hints
}
