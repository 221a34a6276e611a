package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/pkg/types"
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/tabular"
)

// Format is a download format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts csv, xlsx or pdf; empty means csv.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("export: unknown format %q: want csv|xlsx|pdf", s)
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Extension is the file extension without a dot.
func (f Format) Extension() string { return string(f) }

// Write dispatches to the writer for f. title is used by formats that carry
// one (sheet name, PDF heading).
func Write(w io.Writer, f Format, title string, records []types.Record) error {
	switch f {
	case FormatXLSX:
		return WriteXLSX(w, title, records)
	case FormatPDF:
		return WritePDF(w, title, records)
	default:
		return WriteCSV(w, records)
	}
}

// WriteCSV writes records with the attendance header.
func WriteCSV(w io.Writer, records []types.Record) error {
	if err := tabular.WriteRecords(w, records); err != nil {
		return fmt.Errorf("export: csv: %w", err)
	}
	return nil
}

// ReadCSV parses output of WriteCSV. Unlike the store loader it is strict:
// the first malformed row aborts the read, and field values are kept
// exactly as written.
func ReadCSV(r io.Reader) ([]types.Record, error) {
	var firstBad error
	records, err := tabular.ReadRecordsVerbatim(r, func(err error) {
		if firstBad == nil {
			firstBad = err
		}
	})
	if err != nil {
		return nil, fmt.Errorf("export: csv: %w", err)
	}
	if firstBad != nil {
		return nil, fmt.Errorf("export: csv: %w", firstBad)
	}
	return records, nil
}
