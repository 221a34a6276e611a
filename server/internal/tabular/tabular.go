package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/pkg/types"
)

// Column headers, in write order.
var (
	StudentHeader = []string{"roll", "name", "gender", "department", "year"}
	RecordHeader  = []string{"date", "roll", "subject", "status"}
)

// ErrMissingHeader is returned when the first row lacks a required column.
var ErrMissingHeader = errors.New("tabular: missing header column")

// BadRowFunc receives each skipped row's error. It may be nil.
type BadRowFunc func(error)

// columns maps header names to their index in a row.
type columns map[string]int

func readHeader(r *csv.Reader, want []string) (columns, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	cols := make(columns, len(row))
	for i, name := range row {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, name := range want {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingHeader, name)
		}
	}
	return cols, nil
}

// get returns the named field of row passed through clean.
func (c columns) get(row []string, name string, clean func(string) string) (string, bool) {
	i := c[name]
	if i >= len(row) {
		return "", false
	}
	return clean(row[i]), true
}

func verbatim(s string) string { return s }

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr
}

// readRows drives the shared header + row loop. An empty input yields no rows
// and no error.
func readRows(r io.Reader, header []string, row func(cols columns, rec []string, line int) error, onBad BadRowFunc) error {
	cr := newReader(r)
	cols, err := readHeader(cr, header)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				report(onBad, &types.DataFormatError{Field: "row", Line: pe.Line, Err: pe.Err})
				continue
			}
			return err
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		line, _ := cr.FieldPos(0)
		if err := row(cols, rec, line); err != nil {
			report(onBad, err)
		}
	}
}

func report(onBad BadRowFunc, err error) {
	if onBad != nil {
		onBad(err)
	}
}

func missing(name string, line int) error {
	return &types.DataFormatError{Field: name, Line: line, Err: errors.New("column missing")}
}

func withLine(err error, line int) error {
	var dfe *types.DataFormatError
	if errors.As(err, &dfe) {
		dfe.Line = line
	}
	return err
}

// ReadStudents decodes a roster file.
func ReadStudents(r io.Reader, onBad BadRowFunc) ([]types.Student, error) {
	out := make([]types.Student, 0)
	err := readRows(r, StudentHeader, func(cols columns, rec []string, line int) error {
		var vals [5]string
		for i, name := range StudentHeader {
			v, ok := cols.get(rec, name, strings.TrimSpace)
			if !ok {
				return missing(name, line)
			}
			vals[i] = v
		}
		g, err := types.ParseGender(vals[2])
		if err != nil {
			return withLine(err, line)
		}
		y, err := types.ParseYear(vals[4])
		if err != nil {
			return withLine(err, line)
		}
		s := types.Student{Roll: vals[0], Name: vals[1], Gender: g, Department: vals[3], Year: y}
		if s.Roll == "" {
			return missing("roll", line)
		}
		out = append(out, s)
		return nil
	}, onBad)
	if err != nil {
		return nil, fmt.Errorf("tabular: read students: %w", err)
	}
	return out, nil
}

// ReadRecords decodes an attendance file, trimming whitespace around every
// field.
func ReadRecords(r io.Reader, onBad BadRowFunc) ([]types.Record, error) {
	return readRecords(r, onBad, strings.TrimSpace)
}

// ReadRecordsVerbatim decodes an attendance file keeping date, roll and
// subject exactly as written, so WriteRecords output reads back unchanged.
// Status is still parsed to its canonical spelling.
func ReadRecordsVerbatim(r io.Reader, onBad BadRowFunc) ([]types.Record, error) {
	return readRecords(r, onBad, verbatim)
}

func readRecords(r io.Reader, onBad BadRowFunc, clean func(string) string) ([]types.Record, error) {
	out := make([]types.Record, 0)
	err := readRows(r, RecordHeader, func(cols columns, rec []string, line int) error {
		var vals [4]string
		for i, name := range RecordHeader {
			v, ok := cols.get(rec, name, clean)
			if !ok {
				return missing(name, line)
			}
			vals[i] = v
		}
		st, err := types.ParseStatus(vals[3])
		if err != nil {
			var dfe *types.DataFormatError
			if errors.As(err, &dfe) {
				dfe.Roll = vals[1]
			}
			return withLine(err, line)
		}
		out = append(out, types.Record{Date: vals[0], Roll: vals[1], Subject: vals[2], Status: st})
		return nil
	}, onBad)
	if err != nil {
		return nil, fmt.Errorf("tabular: read records: %w", err)
	}
	return out, nil
}

// WriteStudents writes the header followed by one row per student.
func WriteStudents(w io.Writer, students []types.Student) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(StudentHeader); err != nil {
		return err
	}
	for _, s := range students {
		if err := cw.Write([]string{s.Roll, s.Name, string(s.Gender), s.Department, string(s.Year)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRecords writes the header followed by one row per record.
func WriteRecords(w io.Writer, records []types.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RecordHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(RecordRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRecordRows appends rows without a header, for append-only files.
func WriteRecordRows(w io.Writer, records ...types.Record) error {
	cw := csv.NewWriter(w)
	for _, r := range records {
		if err := cw.Write(RecordRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RecordRow is the column slice for r in RecordHeader order.
func RecordRow(r types.Record) []string {
	return []string{r.Date, r.Roll, r.Subject, string(r.Status)}
}
