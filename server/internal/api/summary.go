package api

import (
	"sort"
	"time"

	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/pkg/types"
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/alerts"
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/analytics"
)

// BuildSummary classifies every rostered student. Records for rolls missing
// from the roster count towards RecordCount only. Every band of p appears in
// Counts, zero or not.
func BuildSummary(students []types.Student, records []types.Record, p analytics.Policy, now time.Time) Summary {
	byRoll := make(map[string][]types.Record, len(students))
	for _, r := range records {
		byRoll[r.Roll] = append(byRoll[r.Roll], r)
	}

	counts := make(map[string]int, len(p.Bands))
	for _, l := range p.Labels() {
		counts[l] = 0
	}

	rows := make([]StudentSummary, 0, len(students))
	for _, s := range students {
		t := analytics.Count(byRoll[s.Roll])
		pct := t.Percentage()
		c := p.Classify(pct)
		counts[c.Label]++
		rows = append(rows, StudentSummary{
			Roll:           s.Roll,
			Name:           s.Name,
			Department:     s.Department,
			Year:           s.Year,
			Present:        t.Present,
			Total:          t.Total,
			Percentage:     pct,
			Classification: c,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Roll < rows[j].Roll })

	return Summary{
		Policy:       p.Name,
		StudentCount: len(students),
		RecordCount:  len(records),
		Counts:       counts,
		Students:     rows,
		GeneratedAt:  now.UTC().Format(time.RFC3339),
	}
}

// AlertStudents converts the summary rows into alert engine input.
func (s Summary) AlertStudents() []alerts.Student {
	out := make([]alerts.Student, 0, len(s.Students))
	for _, r := range s.Students {
		out = append(out, alerts.Student{
			Roll:       r.Roll,
			Name:       r.Name,
			Present:    r.Present,
			Total:      r.Total,
			Percentage: r.Percentage,
			Label:      r.Classification.Label,
			Severity:   r.Classification.Severity,
		})
	}
	return out
}
