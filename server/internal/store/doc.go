// Package store persists the roster and the attendance log as flat CSV files.
//
// Roster (students.csv) is rewritten atomically on every change through a
// temp file and rename; Attendance (attendance.csv) is append-only. Both
// serialise file access with a mutex and report skipped rows through OnBadRow.
package store
