package api

import (
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/pkg/types"
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/analytics"
)

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status           string         `json:"status"`
	Policy           string         `json:"policy"`
	StudentCount     int            `json:"student_count"`
	RecordCount      int            `json:"record_count"`
	Counts           map[string]int `json:"classification_counts"`
	DataFormatErrors float64        `json:"data_format_errors"`
	AlertCount       int            `json:"alert_count"`
}

// StudentReportResponse is the payload for GET /api/v1/students/{roll}.
type StudentReportResponse struct {
	Student types.Student    `json:"student"`
	Report  analytics.Report `json:"report"`
	Hints   []Hint           `json:"hints"`
	// Warnings lists records left out of the trend.
	Warnings []string `json:"warnings,omitempty"`
}

// SubjectsResponse is the payload for GET /api/v1/subjects.
type SubjectsResponse struct {
	Subjects []string `json:"subjects"`
}

// MarkRequest is the body of POST /api/v1/attendance. Status defaults to
// Present.
type MarkRequest struct {
	Roll    string `json:"roll" validate:"required,notblank"`
	Subject string `json:"subject" validate:"required,subject"`
	Status  string `json:"status,omitempty" validate:"omitempty,oneof=Present Absent"`
}

// Summary is the roster-wide dashboard view, also pushed over the WebSocket.
type Summary struct {
	Policy       string           `json:"policy"`
	StudentCount int              `json:"student_count"`
	RecordCount  int              `json:"record_count"`
	Counts       map[string]int   `json:"classification_counts"`
	Students     []StudentSummary `json:"students"`
	GeneratedAt  string           `json:"generated_at"` // RFC3339
}

// StudentSummary is one row of Summary.
type StudentSummary struct {
	Roll           string                   `json:"roll"`
	Name           string                   `json:"name"`
	Department     string                   `json:"department"`
	Year           types.Year               `json:"year"`
	Present        int                      `json:"present"`
	Total          int                      `json:"total"`
	Percentage     float64                  `json:"percentage"`
	Classification analytics.Classification `json:"classification"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
	// Fields maps each rejected field to the validation tag it failed.
	Fields map[string]string `json:"fields,omitempty"`
}
