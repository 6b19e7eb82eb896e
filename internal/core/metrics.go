package core

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	imports        *prometheus.CounterVec
	importDuration prometheus.Histogram
	importedRows   *prometheus.CounterVec
	decodeStates   *prometheus.CounterVec
	exports        *prometheus.CounterVec
	backups        *prometheus.CounterVec
}

// NewMetrics creates the service collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		imports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "liftlog_imports_total",
				Help: "Total number of document imports by result kind",
			},
			[]string{"result"},
		),
		importDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "liftlog_import_duration_seconds",
				Help:    "Document import duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
			},
		),
		importedRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "liftlog_imported_rows_total",
				Help: "Total number of rows inserted by imports",
			},
			[]string{"section"},
		),
		decodeStates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "liftlog_decode_state_transitions_total",
				Help: "Total number of decode state transitions",
			},
			[]string{"state"},
		),
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "liftlog_exports_total",
				Help: "Total number of exports by kind",
			},
			[]string{"kind"},
		),
		backups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "liftlog_backups_total",
				Help: "Total number of backups and restores by operation and result",
			},
			[]string{"operation", "result"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.imports, m.importDuration, m.importedRows, m.decodeStates, m.exports, m.backups)
	}
	return m
}

func (m *Metrics) observeImport(res ImportResult, err error) {
	result := "ok"
	if err != nil {
		result = KindOf(err).String()
	}
	m.imports.WithLabelValues(result).Inc()
	m.importDuration.Observe(res.Duration.Seconds())
	if err != nil {
		return
	}
	m.importedRows.WithLabelValues(SectionWorkoutGroups).Add(float64(res.Counts.WorkoutGroups))
	m.importedRows.WithLabelValues(SectionExercises).Add(float64(res.Counts.Exercises))
	m.importedRows.WithLabelValues(SectionDays).Add(float64(res.Counts.Days))
	m.importedRows.WithLabelValues(SectionDayWorkoutGroups).Add(float64(res.Counts.DayWorkoutGroups))
	m.importedRows.WithLabelValues(SectionWorkoutSets).Add(float64(res.Counts.WorkoutSets))
}

func (m *Metrics) observeState(state DecodeState) {
	m.decodeStates.WithLabelValues(state.String()).Inc()
}

func (m *Metrics) observeExport(kind string) {
	m.exports.WithLabelValues(kind).Inc()
}

func (m *Metrics) observeBackup(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.backups.WithLabelValues(operation, result).Inc()
}
