package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/pkg/types"
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/alerts"
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/analytics"
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/auth"
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/export"
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/metrics"
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/store"
)

// Roster is the roster store as used by the API.
type Roster interface {
	LoadStudents() ([]types.Student, error)
	Get(roll string) (types.Student, bool, error)
	Add(types.Student) error
	Upsert(types.Student) (bool, error)
}

// Attendance is the attendance store as used by the API.
type Attendance interface {
	LoadRecords() ([]types.Record, error)
	Mark(roll, subject string, status types.Status) (types.Record, error)
}

// Alerts exposes the alert engine state.
type Alerts interface {
	Active() []*alerts.Alert
	Firing() int
}

// Deps wires the handler to its stores and settings.
type Deps struct {
	Roster     Roster
	Attendance Attendance
	Subjects   []string
	Policy     analytics.Policy
	Gate       auth.Gate
	// Metrics and Alerts may be nil.
	Metrics *metrics.Metrics
	Alerts  Alerts
	// OnChange, if set, runs after every successful roster or attendance
	// write. The server points it at the dashboard hub.
	OnChange func()
}

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	roster     Roster
	attendance Attendance
	subjects   []string
	gate       auth.Gate
	metrics    *metrics.Metrics
	alerts     Alerts
	onChange   func()
	now        func() time.Time
	validate   *validator.Validate

	mu     sync.RWMutex
	policy analytics.Policy

	mux *http.ServeMux
}

// New creates a Handler and registers all routes.
func New(d Deps) *Handler {
	h := &Handler{
		roster:     d.Roster,
		attendance: d.Attendance,
		subjects:   append([]string(nil), d.Subjects...),
		gate:       d.Gate,
		metrics:    d.Metrics,
		alerts:     d.Alerts,
		onChange:   d.OnChange,
		now:        time.Now,
		policy:     d.Policy,
		mux:        http.NewServeMux(),
	}
	h.validate = types.NewValidator()
	// subject only accepts the configured subject names.
	h.validate.RegisterValidation("subject", func(fl validator.FieldLevel) bool { //nolint:errcheck
		return h.hasSubject(fl.Field().String())
	})

	view := func(f http.HandlerFunc) http.HandlerFunc { return h.gate.Require(auth.CapView, f) }
	manage := func(f http.HandlerFunc) http.HandlerFunc { return h.gate.Require(auth.CapManage, f) }

	h.mux.HandleFunc("/api/v1/health", view(h.health))
	h.mux.HandleFunc("/api/v1/subjects", view(h.listSubjects))
	h.mux.HandleFunc("/api/v1/students", manage(h.students))
	h.mux.HandleFunc("/api/v1/students/", h.student) // subtree, gated per method
	h.mux.HandleFunc("/api/v1/attendance", manage(h.records))
	h.mux.HandleFunc("/api/v1/summary", manage(h.summary))
	h.mux.HandleFunc("/api/v1/alerts", manage(h.listAlerts))
	h.mux.HandleFunc("/api/v1/export", manage(h.export))

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// SetPolicy swaps the classification policy used by later requests.
func (h *Handler) SetPolicy(p analytics.Policy) {
	h.mu.Lock()
	h.policy = p
	h.mu.Unlock()
	slog.Info("api: policy updated", "policy", p.Name)
}

// Policy returns the policy currently in effect.
func (h *Handler) Policy() analytics.Policy {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.policy
}

// Summary loads both stores and builds the dashboard view.
func (h *Handler) Summary() (Summary, error) {
	students, err := h.roster.LoadStudents()
	if err != nil {
		return Summary{}, err
	}
	records, err := h.attendance.LoadRecords()
	if err != nil {
		return Summary{}, err
	}
	return BuildSummary(students, records, h.Policy(), h.now()), nil
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sum, err := h.Summary()
	if err != nil {
		h.internalErr(w, err)
		return
	}
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:           "ok",
		Policy:           sum.Policy,
		StudentCount:     sum.StudentCount,
		RecordCount:      sum.RecordCount,
		Counts:           sum.Counts,
		DataFormatErrors: h.metrics.Total(metrics.DataFormatErrors),
		AlertCount:       h.firing(),
	})
}

// listSubjects returns GET /api/v1/subjects.
func (h *Handler) listSubjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, SubjectsResponse{Subjects: h.subjects})
}

// students serves GET and POST /api/v1/students.
func (h *Handler) students(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := h.roster.LoadStudents()
		if err != nil {
			h.internalErr(w, err)
			return
		}
		jsonResp(w, http.StatusOK, list)

	case http.MethodPost:
		var s types.Student
		if !decodeBody(w, r, &s) {
			return
		}
		if err := h.roster.Add(s); err != nil {
			switch {
			case errors.Is(err, store.ErrStudentExists):
				jsonErr(w, http.StatusConflict, "student already exists")
			case isValidation(err):
				validationErr(w, err)
			default:
				h.internalErr(w, err)
			}
			return
		}
		h.metrics.StudentSaved()
		h.changed()
		slog.Info("api: student added", "roll", s.Roll)
		jsonResp(w, http.StatusCreated, s)

	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// student serves the /api/v1/students/{roll}[/records] subtree.
func (h *Handler) student(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/students/")
	roll, sub, _ := strings.Cut(rest, "/")
	if roll == "" {
		// Bare /api/v1/students/ behaves like the collection.
		h.gate.Require(auth.CapManage, h.students)(w, r)
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.gate.Require(auth.CapView, func(w http.ResponseWriter, r *http.Request) {
			h.studentReport(w, r, roll)
		})(w, r)
	case sub == "" && r.Method == http.MethodPut:
		h.gate.Require(auth.CapManage, func(w http.ResponseWriter, r *http.Request) {
			h.putStudent(w, r, roll)
		})(w, r)
	case sub == "records" && r.Method == http.MethodGet:
		h.gate.Require(auth.CapView, func(w http.ResponseWriter, r *http.Request) {
			h.studentRecords(w, r, roll)
		})(w, r)
	case sub == "" || sub == "records":
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	default:
		jsonErr(w, http.StatusNotFound, "not found")
	}
}

// studentReport returns GET /api/v1/students/{roll}.
func (h *Handler) studentReport(w http.ResponseWriter, r *http.Request, roll string) {
	bucket, err := analytics.ParseBucket(r.URL.Query().Get("bucket"))
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	s, ok := h.lookup(w, roll)
	if !ok {
		return
	}
	records, err := h.attendance.LoadRecords()
	if err != nil {
		h.internalErr(w, err)
		return
	}

	p := h.Policy()
	rep, err := analytics.Summarize(records, roll, p, bucket)
	resp := StudentReportResponse{Student: s, Report: rep, Hints: computeHints(rep, p)}
	for _, e := range unjoin(err) {
		h.metrics.DataFormatError(metrics.SourceTrend)
		resp.Warnings = append(resp.Warnings, e.Error())
	}
	if len(resp.Warnings) > 0 {
		slog.Warn("api: records left out of trend", "roll", roll, "count", len(resp.Warnings))
	}
	jsonResp(w, http.StatusOK, resp)
}

// studentRecords returns GET /api/v1/students/{roll}/records.
func (h *Handler) studentRecords(w http.ResponseWriter, r *http.Request, roll string) {
	if _, ok := h.lookup(w, roll); !ok {
		return
	}
	records, err := h.attendance.LoadRecords()
	if err != nil {
		h.internalErr(w, err)
		return
	}
	jsonResp(w, http.StatusOK, analytics.FilterByStudent(records, roll))
}

// putStudent serves PUT /api/v1/students/{roll}. The path roll wins over any
// roll in the body.
func (h *Handler) putStudent(w http.ResponseWriter, r *http.Request, roll string) {
	var s types.Student
	if !decodeBody(w, r, &s) {
		return
	}
	s.Roll = roll
	created, err := h.roster.Upsert(s)
	if err != nil {
		if isValidation(err) {
			validationErr(w, err)
			return
		}
		h.internalErr(w, err)
		return
	}
	h.metrics.StudentSaved()
	h.changed()
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	jsonResp(w, code, s)
}

// records serves GET and POST /api/v1/attendance.
func (h *Handler) records(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		records, err := h.attendance.LoadRecords()
		if err != nil {
			h.internalErr(w, err)
			return
		}
		if roll := r.URL.Query().Get("roll"); roll != "" {
			records = analytics.FilterByStudent(records, roll)
		}
		jsonResp(w, http.StatusOK, records)

	case http.MethodPost:
		h.mark(w, r)

	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) mark(w http.ResponseWriter, r *http.Request) {
	var req MarkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		validationErr(w, err)
		return
	}
	status := types.StatusPresent
	if req.Status != "" {
		status = types.Status(req.Status)
	}
	if _, ok := h.lookup(w, req.Roll); !ok {
		return
	}

	rec, err := h.attendance.Mark(req.Roll, req.Subject, status)
	if errors.Is(err, store.ErrUnknownStudent) {
		jsonErr(w, http.StatusNotFound, "student not found")
		return
	}
	if err != nil {
		h.internalErr(w, err)
		return
	}
	h.metrics.RecordAppended(string(rec.Status))
	h.changed()
	slog.Info("api: attendance marked", "roll", rec.Roll, "subject", rec.Subject, "status", rec.Status)
	jsonResp(w, http.StatusCreated, rec)
}

// summary returns GET /api/v1/summary.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sum, err := h.Summary()
	if err != nil {
		h.internalErr(w, err)
		return
	}
	jsonResp(w, http.StatusOK, sum)
}

// listAlerts returns GET /api/v1/alerts: firing and recently resolved alerts.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.alerts == nil {
		jsonResp(w, http.StatusOK, []struct{}{})
		return
	}
	jsonResp(w, http.StatusOK, h.alerts.Active())
}

// export serves GET /api/v1/export?format=csv|xlsx|pdf[&roll=].
func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := r.URL.Query()
	f, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	roll := q.Get("roll")
	if roll != "" {
		if _, ok := h.lookup(w, roll); !ok {
			return
		}
	}
	records, err := h.attendance.LoadRecords()
	if err != nil {
		h.internalErr(w, err)
		return
	}

	name, title := "attendance", "Attendance"
	if roll != "" {
		records = analytics.FilterByStudent(records, roll)
		name, title = "attendance-"+roll, "Attendance "+roll
	}

	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"."+f.Extension()))
	if err := export.Write(w, f, title, records); err != nil {
		// Headers are already out; all we can do is log.
		slog.Error("api: export failed", "format", f, "err", err)
		return
	}
	h.metrics.Export(string(f))
}

// --- helpers ----------------------------------------------------------------

// lookup fetches roll from the roster, writing 404 on a miss.
func (h *Handler) lookup(w http.ResponseWriter, roll string) (types.Student, bool) {
	s, ok, err := h.roster.Get(roll)
	if err != nil {
		h.internalErr(w, err)
		return types.Student{}, false
	}
	h.metrics.Lookup(ok)
	if !ok {
		jsonErr(w, http.StatusNotFound, "student not found")
		return types.Student{}, false
	}
	return s, true
}

func (h *Handler) firing() int {
	if h.alerts == nil {
		return 0
	}
	return h.alerts.Firing()
}

func (h *Handler) changed() {
	if h.onChange != nil {
		h.onChange()
	}
}

func (h *Handler) hasSubject(s string) bool {
	for _, v := range h.subjects {
		if v == s {
			return true
		}
	}
	return false
}

func (h *Handler) internalErr(w http.ResponseWriter, err error) {
	slog.Error("api: request failed", "err", err)
	jsonErr(w, http.StatusInternalServerError, "internal error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// isValidation reports whether err came from struct validation rather than
// the file system.
func isValidation(err error) bool {
	var (
		ve  validator.ValidationErrors
		dfe *types.DataFormatError
	)
	return errors.Is(err, types.ErrInvalidStudent) || errors.As(err, &ve) || errors.As(err, &dfe)
}

// validationErr writes 400 with the failing fields listed.
func validationErr(w http.ResponseWriter, err error) {
	jsonResp(w, http.StatusBadRequest, errorResponse{
		Error:  "validation failed",
		Fields: types.FieldErrors(err),
	})
}

// unjoin flattens an errors.Join result.
func unjoin(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
