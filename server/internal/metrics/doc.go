// Package metrics owns the Prometheus registry for attendance-server.
//
// Counters:
//
//	attendance_records_appended_total{status}
//	attendance_students_saved_total
//	attendance_data_format_errors_total{source}
//	attendance_lookups_total{result}
//	attendance_exports_total{format}
//
// All recording methods are safe on a nil *Metrics, so callers that run
// without metrics need no guards.
package metrics
