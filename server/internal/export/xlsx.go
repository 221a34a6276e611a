package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/pkg/types"
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/tabular"
)

const defaultSheet = "Attendance"

// maxSheetName is the Excel limit on sheet name length.
const maxSheetName = 31

// WriteXLSX writes records to a single-sheet workbook with a bold header row.
func WriteXLSX(w io.Writer, sheet string, records []types.Record) error {
	sheet = sheetName(sheet)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("export: xlsx: rename sheet: %w", err)
	}

	header := make([]interface{}, len(tabular.RecordHeader))
	for i, h := range tabular.RecordHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("export: xlsx: header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: xlsx: style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("export: xlsx: style: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: xlsx: %w", err)
		}
		row := []interface{}{r.Date, r.Roll, r.Subject, string(r.Status)}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("export: xlsx: row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(sheet, "A", "D", 16); err != nil {
		return fmt.Errorf("export: xlsx: width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: xlsx: write: %w", err)
	}
	return nil
}

// ReadXLSX reads records back from a workbook produced by WriteXLSX.
func ReadXLSX(r io.Reader) ([]types.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("export: xlsx: open: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("export: xlsx: rows: %w", err)
	}
	out := make([]types.Record, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) < len(tabular.RecordHeader) {
			return nil, &types.DataFormatError{Field: "row", Line: i + 1}
		}
		st, err := types.ParseStatus(row[3])
		if err != nil {
			return nil, err
		}
		out = append(out, types.Record{Date: row[0], Roll: row[1], Subject: row[2], Status: st})
	}
	return out, nil
}

// sheetName strips characters Excel forbids and enforces the length limit.
func sheetName(s string) string {
	clean := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			continue
		}
		clean = append(clean, r)
	}
	if len(clean) == 0 {
		return defaultSheet
	}
	if len(clean) > maxSheetName {
		clean = clean[:maxSheetName]
	}
	return string(clean)
}
