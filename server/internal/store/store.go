package store

import (
	"errors"
	"log/slog"

	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/pkg/types"
)

var (
	// ErrStudentExists is returned by Roster.Add for a duplicate roll.
	ErrStudentExists = errors.New("student already exists")

	// ErrUnknownStudent is returned when a roll is not in the roster.
	ErrUnknownStudent = errors.New("unknown student")
)

// RosterStore loads and saves the full student roster.
type RosterStore interface {
	LoadStudents() ([]types.Student, error)
	SaveStudents([]types.Student) error
}

// AttendanceStore loads the attendance log and appends to it.
type AttendanceStore interface {
	LoadRecords() ([]types.Record, error)
	AppendRecord(types.Record) error
}

// logBadRow is the default OnBadRow hook.
func logBadRow(path string) func(error) {
	return func(err error) {
		slog.Warn("store: skipping malformed row", "path", path, "err", err)
	}
}
