package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/pkg/types"
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/tabular"
)

// Attendance is an append-only AttendanceStore backed by a CSV file with the
// columns date,roll,subject,status.
//
// All exported methods are safe for concurrent use.
type Attendance struct {
	path string
	mu   sync.Mutex
	now  func() time.Time // injectable for deterministic tests

	// OnBadRow receives rows skipped while loading. Defaults to a slog warning.
	OnBadRow func(error)

	// Known, when set, is consulted by Mark before appending. See RosterCheck.
	Known func(roll string) (bool, error)
}

// RosterCheck adapts r for Attendance.Known.
func RosterCheck(r *Roster) func(string) (bool, error) {
	return func(roll string) (bool, error) {
		_, ok, err := r.Get(roll)
		return ok, err
	}
}

// NewAttendance returns an Attendance store for path. The file need not exist.
func NewAttendance(path string) *Attendance {
	return &Attendance{path: path, now: time.Now, OnBadRow: logBadRow(path)}
}

// Path returns the backing file path.
func (a *Attendance) Path() string { return a.path }

// LoadRecords reads every record in file order. A missing file is empty.
func (a *Attendance) LoadRecords() ([]types.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.Open(a.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []types.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: open attendance: %w", err)
	}
	defer f.Close()

	records, err := tabular.ReadRecords(f, a.OnBadRow)
	if err != nil {
		return nil, fmt.Errorf("store: %s: %w", a.path, err)
	}
	return records, nil
}

// AppendRecord adds rec to the end of the file, writing the header first if
// the file is new or empty.
func (a *Attendance) AppendRecord(rec types.Record) error {
	if !rec.Status.Valid() {
		return &types.DataFormatError{Field: "status", Value: string(rec.Status), Roll: rec.Roll}
	}
	if strings.TrimSpace(rec.Roll) == "" {
		return &types.DataFormatError{Field: "roll", Value: rec.Roll}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("store: open attendance for append: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("store: stat attendance: %w", err)
	}
	if info.Size() == 0 {
		if err := tabular.WriteRecords(f, []types.Record{rec}); err != nil {
			return fmt.Errorf("store: append attendance: %w", err)
		}
		return nil
	}
	if err := tabular.WriteRecordRows(f, rec); err != nil {
		return fmt.Errorf("store: append attendance: %w", err)
	}
	return nil
}

// Mark appends a record for roll dated today. When Known is set, a roll that
// is not in the roster yields ErrUnknownStudent and nothing is written.
func (a *Attendance) Mark(roll, subject string, status types.Status) (types.Record, error) {
	if a.Known != nil {
		ok, err := a.Known(roll)
		if err != nil {
			return types.Record{}, err
		}
		if !ok {
			return types.Record{}, fmt.Errorf("%w: %s", ErrUnknownStudent, roll)
		}
	}
	rec := types.Record{
		Date:    a.now().Format(types.DateLayout),
		Roll:    roll,
		Subject: subject,
		Status:  status,
	}
	return rec, a.AppendRecord(rec)
}
