// Package api implements the HTTP REST API for attendance-server.
//
// New(deps) returns a Handler that serves:
//
//	GET  /api/v1/health                  roster size, record count, band counts
//	GET  /api/v1/subjects                configured subject set
//	GET  /api/v1/students/{roll}         profile, report and hints; 404 if unknown
//	GET  /api/v1/students/{roll}/records that student's records
//	GET  /api/v1/students                roster                     (manage)
//	POST /api/v1/students                add; 409 duplicate         (manage)
//	PUT  /api/v1/students/{roll}         add or replace             (manage)
//	GET  /api/v1/attendance              all records, ?roll= filter (manage)
//	POST /api/v1/attendance              mark today; 404 unknown    (manage)
//	GET  /api/v1/summary                 roster-wide dashboard      (manage)
//	GET  /api/v1/alerts                  firing and recent alerts   (manage)
//	GET  /api/v1/export                  csv|xlsx|pdf download      (manage)
//
// Routes marked (manage) require the faculty capability from auth.Gate.
// Wrong methods get 405. Every response is JSON except downloads.
//
// The threshold policy can be swapped at runtime with SetPolicy.
package api
