package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/pkg/types"
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/analytics"
)

// Column widths in mm for date, roll, subject, status on A4 portrait.
var pdfWidths = []float64{35, 40, 70, 35}

var pdfHeader = []string{"Date", "Roll", "Subject", "Status"}

// WritePDF renders records as a single table with a totals line underneath.
func WritePDF(w io.Writer, title string, records []types.Record) error {
	if title == "" {
		title = "Attendance Records"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range pdfHeader {
			pdf.CellFormat(pdfWidths[i], 7, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})
	header()

	for _, r := range records {
		cells := []string{r.Date, r.Roll, r.Subject, string(r.Status)}
		for i, c := range cells {
			pdf.CellFormat(pdfWidths[i], 6, tr(c), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	t := analytics.Count(records)
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Present %d of %d (%.2f%%)", t.Present, t.Total, t.Percentage()), "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: pdf: %w", err)
	}
	return nil
}
