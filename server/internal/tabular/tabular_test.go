package tabular

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/pkg/types"
)

// collect returns a BadRowFunc that appends to errs.
func collect(errs *[]error) BadRowFunc {
	return func(err error) { *errs = append(*errs, err) }
}

func TestReadStudents_Valid(t *testing.T) {
	in := "roll,name,gender,department,year\n" +
		"S1,Asha Rao,Female,CS,2nd\n" +
		"S2, Vikram ,male,Physics,4\n"
	var bad []error
	got, err := ReadStudents(strings.NewReader(in), collect(&bad))
	if err != nil {
		t.Fatalf("ReadStudents: %v", err)
	}
	if len(bad) != 0 {
		t.Errorf("bad rows: %v", bad)
	}
	if len(got) != 2 {
		t.Fatalf("got %d students, want 2", len(got))
	}
	if got[1].Name != "Vikram" || got[1].Gender != types.GenderMale || got[1].Year != types.Year4 {
		t.Errorf("student[1] = %+v", got[1])
	}
}

func TestReadStudents_ColumnOrderIndependent(t *testing.T) {
	in := "year,roll,department,name,gender\n3rd,S7,EE,Meera,Female\n"
	got, err := ReadStudents(strings.NewReader(in), nil)
	if err != nil {
		t.Fatalf("ReadStudents: %v", err)
	}
	if len(got) != 1 || got[0].Roll != "S7" || got[0].Year != types.Year3 {
		t.Errorf("got %+v", got)
	}
}

func TestReadStudents_SkipsBadRows(t *testing.T) {
	in := "roll,name,gender,department,year\n" +
		"S1,Asha,Female,CS,2nd\n" +
		"S2,Ravi,Unknown,CS,1st\n" +
		"S3,Kiran,Male,CS\n" +
		"S4,Anu,Female,CS,7th\n"
	var bad []error
	got, err := ReadStudents(strings.NewReader(in), collect(&bad))
	if err != nil {
		t.Fatalf("ReadStudents: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d valid students, want 1", len(got))
	}
	if len(bad) != 3 {
		t.Fatalf("got %d bad rows, want 3: %v", len(bad), bad)
	}
	var dfe *types.DataFormatError
	if !errors.As(bad[0], &dfe) || dfe.Field != "gender" || dfe.Line != 3 {
		t.Errorf("bad[0] = %v", bad[0])
	}
}

func TestReadStudents_MissingHeader(t *testing.T) {
	_, err := ReadStudents(strings.NewReader("roll,name\nS1,Asha\n"), nil)
	if !errors.Is(err, ErrMissingHeader) {
		t.Errorf("err = %v, want ErrMissingHeader", err)
	}
}

func TestReadRecords_EmptyInput(t *testing.T) {
	got, err := ReadRecords(strings.NewReader(""), nil)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}

func TestReadRecords_BadStatusSkipped(t *testing.T) {
	in := "date,roll,subject,status\n" +
		"2025-01-02,S1,Maths,Present\n" +
		"2025-01-02,S2,Maths,Late\n" +
		"not-a-date,S1,CS,absent\n"
	var bad []error
	got, err := ReadRecords(strings.NewReader(in), collect(&bad))
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	// Dates are not validated here.
	if got[1].Date != "not-a-date" || got[1].Status != types.StatusAbsent {
		t.Errorf("record[1] = %+v", got[1])
	}
	if len(bad) != 1 {
		t.Fatalf("bad = %v, want 1", bad)
	}
	var dfe *types.DataFormatError
	if !errors.As(bad[0], &dfe) || dfe.Roll != "S2" || dfe.Line != 3 {
		t.Errorf("bad[0] = %v", bad[0])
	}
}

func TestRecords_RoundTrip(t *testing.T) {
	in := []types.Record{
		{Date: "2025-01-02", Roll: "S1", Subject: "Maths", Status: types.StatusPresent},
		{Date: "2025-01-03", Roll: "S2", Subject: "Data, Structures", Status: types.StatusAbsent},
		{Date: "2025-01-04", Roll: "S1", Subject: `The "Lab"`, Status: types.StatusPresent},
	}
	var buf bytes.Buffer
	if err := WriteRecords(&buf, in); err != nil {
		t.Fatalf("WriteRecords: %v", err)
	}
	out, err := ReadRecords(&buf, nil)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d records, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("record %d = %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestReadRecordsVerbatim_KeepsPadding(t *testing.T) {
	in := "date,roll,subject,status\n\" 2025-01-02\",S1 ,Maths ,Present\n"

	got, err := ReadRecordsVerbatim(strings.NewReader(in), nil)
	if err != nil {
		t.Fatalf("ReadRecordsVerbatim: %v", err)
	}
	want := types.Record{Date: " 2025-01-02", Roll: "S1 ", Subject: "Maths ", Status: types.StatusPresent}
	if len(got) != 1 || got[0] != want {
		t.Errorf("verbatim: got %+v, want %+v", got, want)
	}

	trimmed, err := ReadRecords(strings.NewReader(in), nil)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(trimmed) != 1 || trimmed[0].Date != "2025-01-02" || trimmed[0].Subject != "Maths" {
		t.Errorf("trimmed: got %+v", trimmed)
	}
}

func TestStudents_RoundTrip(t *testing.T) {
	in := []types.Student{
		{Roll: "S1", Name: "Asha", Gender: types.GenderFemale, Department: "CS", Year: types.Year1},
		{Roll: "S2", Name: "Ravi Kumar", Gender: types.GenderMale, Department: "Electronics", Year: types.Year3},
	}
	var buf bytes.Buffer
	if err := WriteStudents(&buf, in); err != nil {
		t.Fatalf("WriteStudents: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "roll,name,gender,department,year\n") {
		t.Errorf("header missing: %q", buf.String())
	}
	out, err := ReadStudents(&buf, nil)
	if err != nil {
		t.Fatalf("ReadStudents: %v", err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("student %d = %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestWriteRecordRows_NoHeader(t *testing.T) {
	var buf bytes.Buffer
	r := types.Record{Date: "2025-03-01", Roll: "S9", Subject: "CS", Status: types.StatusPresent}
	if err := WriteRecordRows(&buf, r); err != nil {
		t.Fatalf("WriteRecordRows: %v", err)
	}
	if got := buf.String(); got != "2025-03-01,S9,CS,Present\n" {
		t.Errorf("row = %q", got)
	}
}
