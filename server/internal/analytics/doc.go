// Package analytics derives attendance metrics from a sequence of records.
//
// analytics.go holds the pure aggregation functions: FilterByStudent,
// OverallPercentage, SubjectBreakdown, TimeBucketTrend and Summarize. None of
// them keep state or touch storage; every call is a function of its inputs,
// so they are safe for concurrent use without locking.
//
// policy.go maps a percentage to a named band (label + severity). Two presets
// exist: "risk" (SAFE ≥75, WARNING 60–75, CRITICAL <60, the default) and
// "eligibility" (Eligible ≥85, Conditional 75–85, Not Eligible <75). Custom
// bands come from config and are checked by Policy.Validate.
//
// Percentages are rounded to 2 decimals, half away from zero.
package analytics
