package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/pkg/types"
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/tabular"
)

// Roster is a RosterStore backed by a CSV file with the columns
// roll,name,gender,department,year.
//
// All exported methods are safe for concurrent use.
type Roster struct {
	path string
	mu   sync.Mutex

	// OnBadRow receives rows skipped while loading. Defaults to a slog warning.
	OnBadRow func(error)
}

// NewRoster returns a Roster for path. The file need not exist yet.
func NewRoster(path string) *Roster {
	return &Roster{path: path, OnBadRow: logBadRow(path)}
}

// Path returns the backing file path.
func (r *Roster) Path() string { return r.path }

// LoadStudents reads the whole roster. A missing file is an empty roster.
func (r *Roster) LoadStudents() ([]types.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// SaveStudents replaces the roster file with students.
func (r *Roster) SaveStudents(students []types.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(students)
}

// Get looks up a student by roll. ok is false on a lookup miss.
func (r *Roster) Get(roll string) (types.Student, bool, error) {
	students, err := r.LoadStudents()
	if err != nil {
		return types.Student{}, false, err
	}
	for _, s := range students {
		if s.Roll == roll {
			return s, true, nil
		}
	}
	return types.Student{}, false, nil
}

// Add appends a new student. It returns ErrStudentExists when the roll is
// already present.
func (r *Roster) Add(s types.Student) error {
	if err := s.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	students, err := r.load()
	if err != nil {
		return err
	}
	for _, cur := range students {
		if cur.Roll == s.Roll {
			return fmt.Errorf("%w: %s", ErrStudentExists, s.Roll)
		}
	}
	return r.save(append(students, s))
}

// Upsert replaces the student with the same roll, or appends it. created
// reports whether the roll was new.
func (r *Roster) Upsert(s types.Student) (created bool, err error) {
	if err := s.Validate(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	students, err := r.load()
	if err != nil {
		return false, err
	}
	for i, cur := range students {
		if cur.Roll == s.Roll {
			students[i] = s
			return false, r.save(students)
		}
	}
	return true, r.save(append(students, s))
}

func (r *Roster) load() ([]types.Student, error) {
	f, err := os.Open(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []types.Student{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: open roster: %w", err)
	}
	defer f.Close()

	students, err := tabular.ReadStudents(f, r.OnBadRow)
	if err != nil {
		return nil, fmt.Errorf("store: %s: %w", r.path, err)
	}
	return students, nil
}

// save writes to a temp file in the same directory and renames it over the
// roster so readers never observe a partial file.
func (r *Roster) save(students []types.Student) error {
	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".students-*.csv")
	if err != nil {
		return fmt.Errorf("store: create temp roster: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if err := tabular.WriteStudents(tmp, students); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write roster: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp roster: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("store: replace roster: %w", err)
	}
	return nil
}
