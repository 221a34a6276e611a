package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "attendance"

// Metric family names, as exposed.
const (
	RecordsAppended  = namespace + "_records_appended_total"
	StudentsSaved    = namespace + "_students_saved_total"
	DataFormatErrors = namespace + "_data_format_errors_total"
	Lookups          = namespace + "_lookups_total"
	Exports          = namespace + "_exports_total"
)

// Sources for DataFormatErrors.
const (
	SourceRoster     = "roster"
	SourceAttendance = "attendance"
	SourceTrend      = "trend"
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	recordsAppended  *prometheus.CounterVec
	studentsSaved    prometheus.Counter
	dataFormatErrors *prometheus.CounterVec
	lookups          *prometheus.CounterVec
	exports          *prometheus.CounterVec
}

// New builds and registers every collector, plus the Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		recordsAppended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RecordsAppended,
			Help: "Attendance records appended, by status.",
		}, []string{"status"}),
		studentsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: StudentsSaved,
			Help: "Students added or replaced in the roster.",
		}),
		dataFormatErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: DataFormatErrors,
			Help: "Malformed rows or dates skipped, by source.",
		}, []string{"source"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: Lookups,
			Help: "Student report lookups, by result (hit|miss).",
		}, []string{"result"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: Exports,
			Help: "Attendance downloads, by format.",
		}, []string{"format"}),
	}
	m.reg.MustRegister(
		m.recordsAppended,
		m.studentsSaved,
		m.dataFormatErrors,
		m.lookups,
		m.exports,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordAppended counts one appended record.
func (m *Metrics) RecordAppended(status string) {
	if m == nil {
		return
	}
	m.recordsAppended.WithLabelValues(status).Inc()
}

// StudentSaved counts one roster write of a single student.
func (m *Metrics) StudentSaved() {
	if m == nil {
		return
	}
	m.studentsSaved.Inc()
}

// DataFormatError counts one skipped row or date from source.
func (m *Metrics) DataFormatError(source string) {
	if m == nil {
		return
	}
	m.dataFormatErrors.WithLabelValues(source).Inc()
}

// BadRowHook returns a store OnBadRow hook that logs and counts.
func (m *Metrics) BadRowHook(source, path string) func(error) {
	return func(err error) {
		slog.Warn("store: skipping malformed row", "path", path, "err", err)
		m.DataFormatError(source)
	}
}

// Lookup counts one student lookup.
func (m *Metrics) Lookup(found bool) {
	if m == nil {
		return
	}
	result := "miss"
	if found {
		result = "hit"
	}
	m.lookups.WithLabelValues(result).Inc()
}

// Export counts one download.
func (m *Metrics) Export(format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format).Inc()
}

// Handler serves the text exposition for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Total returns the sum over all label values of the named family, or 0 if
// it has no samples yet.
func (m *Metrics) Total(name string) float64 {
	if m == nil {
		return 0
	}
	mfs, err := m.reg.Gather()
	if err != nil {
		slog.Error("metrics: gather failed", "err", err)
		return 0
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return sumFamily(mf)
		}
	}
	return 0
}

// sumFamily adds up all counter, gauge, or untyped values in a MetricFamily.
func sumFamily(mf *dto.MetricFamily) float64 {
	if mf == nil {
		return 0
	}
	var total float64
	for _, m := range mf.GetMetric() {
		switch {
		case m.Counter != nil:
			total += m.Counter.GetValue()
		case m.Gauge != nil:
			total += m.Gauge.GetValue()
		case m.Untyped != nil:
			total += m.Untyped.GetValue()
		}
	}
	return total
}
