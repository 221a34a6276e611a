// Package tabular encodes and decodes the two flat CSV formats:
//
//	roll,name,gender,department,year   (roster)
//	date,roll,subject,status           (attendance)
//
// Readers locate columns by header name, so column order in the file does not
// matter. Rows with a missing column or an out-of-enum value are skipped and
// handed to the caller's onBad callback as *types.DataFormatError. Dates are
// passed through untouched; the analytics engine reports bad ones.
package tabular
