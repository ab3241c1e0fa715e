package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Cascades = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tailorbooks",
		Name:      "cascades_total",
		Help:      "Job and payment cascades by operation and outcome.",
	}, []string{"operation", "outcome"})

	JobsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tailorbooks",
		Name:      "jobs_completed_total",
		Help:      "Jobs that transitioned into Done.",
	})

	PaymentsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tailorbooks",
		Name:      "payments_applied_total",
		Help:      "Customer payments spread over open sales.",
	})

	SettingsCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tailorbooks",
		Name:      "settings_cache_total",
		Help:      "Settings cache lookups by result.",
	}, []string{"result"})
)

// Observe records the outcome of a cascade.
func Observe(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	Cascades.WithLabelValues(operation, outcome).Inc()
}
