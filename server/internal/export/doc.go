// Package export serialises attendance record subsets for download:
// CSV (same columns as attendance.csv, re-readable with ReadCSV), XLSX via
// excelize, and a simple tabular PDF via gofpdf.
package export
