// Package metrics exposes Prometheus collectors for the violation workflow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Recorded          prometheus.Counter
	BeginFailures     *prometheus.CounterVec
	CompleteFailures  *prometheus.CounterVec
	PointsTransferred prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Recorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "trafix_violations_recorded_total",
			Help: "Violation records created after successful verification.",
		}),
		BeginFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trafix_violation_begin_failures_total",
			Help: "Phase-one failures by reason.",
		}, []string{"reason"}),
		CompleteFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trafix_violation_complete_failures_total",
			Help: "Phase-two failures by reason.",
		}, []string{"reason"}),
		PointsTransferred: factory.NewCounter(prometheus.CounterOpts{
			Name: "trafix_violation_points_transferred_total",
			Help: "Points moved from holders to officers.",
		}),
	}
}
