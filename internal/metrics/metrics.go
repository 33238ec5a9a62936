package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds the app's prometheus collectors. Collectors are registered
// on the default registry; the router exposes them on /metrics.
type Manager struct {
	SessionsStarted   prometheus.Counter
	SessionsCompleted prometheus.Counter
	SessionsDiscarded prometheus.Counter
	ActiveSessions    prometheus.Gauge
	FinalizeFailures  prometheus.Counter
	WorkoutsImported  prometheus.Counter
}

func NewManager() *Manager {
	return &Manager{
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "kangofit",
			Name:      "execution_sessions_started_total",
			Help:      "Number of workout execution sessions started.",
		}),
		SessionsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "kangofit",
			Name:      "execution_sessions_completed_total",
			Help:      "Number of workout execution sessions finalized and persisted.",
		}),
		SessionsDiscarded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "kangofit",
			Name:      "execution_sessions_discarded_total",
			Help:      "Number of sessions closed before completion.",
		}),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "kangofit",
			Name:      "execution_sessions_active",
			Help:      "Currently running workout execution sessions.",
		}),
		FinalizeFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "kangofit",
			Name:      "finalize_failures_total",
			Help:      "Failed finalize attempts (feedback gateway or persistence).",
		}),
		WorkoutsImported: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "kangofit",
			Name:      "workouts_imported_total",
			Help:      "Workout records ingested through the legacy import endpoint.",
		}),
	}
}
