package analytics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/pkg/types"
)

// Bucket is the calendar unit used by TimeBucketTrend.
type Bucket int

const (
	BucketMonth Bucket = iota
	BucketWeek
)

func (b Bucket) String() string {
	switch b {
	case BucketWeek:
		return "week"
	default:
		return "month"
	}
}

// ParseBucket accepts "month" or "week"; an empty string means month.
func ParseBucket(s string) (Bucket, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "month":
		return BucketMonth, nil
	case "week":
		return BucketWeek, nil
	}
	return BucketMonth, fmt.Errorf("analytics: unknown bucket %q: want month|week", s)
}

// Tally holds raw counts for a set of records.
type Tally struct {
	Present int `json:"present"`
	Total   int `json:"total"`
}

// Percentage returns Present/Total*100 rounded to 2 decimals, or 0 when the
// tally is empty.
func (t Tally) Percentage() float64 {
	if t.Total == 0 {
		return 0
	}
	return percent(t.Present, t.Total)
}

// TrendPoint is one calendar bucket of a TimeBucketTrend.
type TrendPoint struct {
	Bucket     string  `json:"bucket"` // "2025-01" or "2025-W03"
	Present    int     `json:"present"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Report is the derived, never-stored aggregate for one student.
type Report struct {
	Roll           string             `json:"roll"`
	Present        int                `json:"present"`
	Total          int                `json:"total"`
	Percentage     float64            `json:"percentage"`
	Subjects       map[string]float64 `json:"subjects"`
	Bucket         string             `json:"bucket"`
	Trend          []TrendPoint       `json:"trend"`
	Classification Classification     `json:"classification"`
}

// FilterByStudent returns the records for roll, preserving order.
func FilterByStudent(records []types.Record, roll string) []types.Record {
	out := make([]types.Record, 0)
	for _, r := range records {
		if r.Roll == roll {
			out = append(out, r)
		}
	}
	return out
}

// Count tallies present and total records.
func Count(records []types.Record) Tally {
	var t Tally
	for _, r := range records {
		t.Total++
		if r.Present() {
			t.Present++
		}
	}
	return t
}

// OverallPercentage is the share of Present records, 0 for empty input.
func OverallPercentage(records []types.Record) float64 {
	return Count(records).Percentage()
}

// SubjectTallies groups counts by subject.
func SubjectTallies(records []types.Record) map[string]Tally {
	out := make(map[string]Tally)
	for _, r := range records {
		t := out[r.Subject]
		t.Total++
		if r.Present() {
			t.Present++
		}
		out[r.Subject] = t
	}
	return out
}

// SubjectBreakdown returns the percentage per distinct subject in records.
func SubjectBreakdown(records []types.Record) map[string]float64 {
	tallies := SubjectTallies(records)
	out := make(map[string]float64, len(tallies))
	for subj, t := range tallies {
		out[subj] = t.Percentage()
	}
	return out
}

// bucketKey orders buckets chronologically: year first, then month or ISO
// week number.
type bucketKey struct {
	year, n int
}

func keyOf(b Bucket, r types.Record) (bucketKey, error) {
	d, err := r.Day()
	if err != nil {
		return bucketKey{}, err
	}
	if b == BucketWeek {
		y, w := d.ISOWeek()
		return bucketKey{year: y, n: w}, nil
	}
	return bucketKey{year: d.Year(), n: int(d.Month())}, nil
}

func (k bucketKey) label(b Bucket) string {
	if b == BucketWeek {
		return fmt.Sprintf("%04d-W%02d", k.year, k.n)
	}
	return fmt.Sprintf("%04d-%02d", k.year, k.n)
}

// TimeBucketTrend groups records by the calendar bucket containing their
// date and returns the per-bucket percentage in chronological order.
//
// Records with an unparseable date are left out of the trend. Each one is
// reported as a *types.DataFormatError inside the returned error (built with
// errors.Join); the returned points are valid regardless.
func TimeBucketTrend(records []types.Record, b Bucket) ([]TrendPoint, error) {
	tallies := make(map[bucketKey]Tally)
	var errs []error
	for _, r := range records {
		k, err := keyOf(b, r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		t := tallies[k]
		t.Total++
		if r.Present() {
			t.Present++
		}
		tallies[k] = t
	}

	keys := make([]bucketKey, 0, len(tallies))
	for k := range tallies {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].n < keys[j].n
	})

	out := make([]TrendPoint, 0, len(keys))
	for _, k := range keys {
		t := tallies[k]
		out = append(out, TrendPoint{
			Bucket:     k.label(b),
			Present:    t.Present,
			Total:      t.Total,
			Percentage: t.Percentage(),
		})
	}
	return out, errors.Join(errs...)
}

// Summarize builds the Report for roll out of the full record set. The
// returned error, when non-nil, only carries the DataFormatErrors from the
// trend; the Report is complete either way.
func Summarize(records []types.Record, roll string, p Policy, b Bucket) (Report, error) {
	own := FilterByStudent(records, roll)
	t := Count(own)
	trend, err := TimeBucketTrend(own, b)

	pct := t.Percentage()
	return Report{
		Roll:           roll,
		Present:        t.Present,
		Total:          t.Total,
		Percentage:     pct,
		Subjects:       SubjectBreakdown(own),
		Bucket:         b.String(),
		Trend:          trend,
		Classification: p.Classify(pct),
	}, err
}

// percent is present/total*100 rounded half away from zero to 2 decimal
// places. Scaling before the division keeps exact halves exact.
func percent(present, total int) float64 {
	return math.Round(float64(present)*10000/float64(total)) / 100
}
