// internals/features/attendance/sessions/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_transitions_total",
			Help: "Session transitions by name and outcome (ok, conflict, not_found, denied, invalid, error)",
		},
		[]string{"transition", "outcome"},
	)
	ViolationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_violations_total",
			Help: "Violations recorded, by type",
		},
		[]string{"type"},
	)
	DetectorFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "attendance_detector_failures_total",
			Help: "Violation detector runs that failed after a successful transition",
		},
	)
	BroadcastDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "attendance_broadcast_dropped_total",
			Help: "Live events dropped because a queue was full",
		},
	)
	BroadcastSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "attendance_broadcast_subscribers",
			Help: "Currently connected live observers",
		},
	)
)
