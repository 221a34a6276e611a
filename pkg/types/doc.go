// Package types defines the data model shared by the stores, the analytics
// engine and the HTTP layer: students, attendance records, their enums, and
// the DataFormatError reported for malformed values.
package types
