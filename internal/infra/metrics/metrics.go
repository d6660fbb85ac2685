package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	autosaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_autosaves_total",
			Help: "Total number of draft auto-saves by operation",
		},
		[]string{"operation"}, // create, update, skipped
	)

	leadsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_completed_total",
			Help: "Total number of submitted lead forms",
		},
		[]string{"source"}, // form, capture
	)

	persistenceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_persistence_errors_total",
			Help: "Total number of swallowed persistence errors",
		},
		[]string{"operation"},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "form_sessions_active",
			Help: "Number of open form sessions",
		},
	)
)

func RecordAutosave(operation string) {
	autosaves.WithLabelValues(operation).Inc()
}

func RecordLeadCompleted(source string) {
	leadsCompleted.WithLabelValues(source).Inc()
}

func RecordPersistenceError(operation string) {
	persistenceErrors.WithLabelValues(operation).Inc()
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}

func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
