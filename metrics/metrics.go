package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for OperationsTotal.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	// OperationsTotal counts coordinator operations by name and outcome.
	// "rejected" covers side-effect-free validation failures, "error"
	// everything that reached a store and failed.
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clash_roster_operations_total",
		Help: "Coordinator operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	// PublishFailures counts best-effort broadcasts that could not be
	// delivered. These never fail the originating operation.
	PublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clash_notify_publish_failures_total",
		Help: "Roster change broadcasts that failed to publish.",
	})

	// ConnectedClients tracks currently registered websocket subscribers.
	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "clash_notify_connected_clients",
		Help: "Currently connected websocket clients.",
	})
)
