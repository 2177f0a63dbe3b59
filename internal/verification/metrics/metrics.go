package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the verification vertical.
type Metrics struct {
	CodesIssued     prometheus.Counter
	VerifySuccesses prometheus.Counter
	VerifyFailures  *prometheus.CounterVec
	SweptChallenges prometheus.Counter
}

// New creates and registers verification metrics.
func New() *Metrics {
	return &Metrics{
		CodesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trafix_verification_codes_issued_total",
			Help: "Total verification codes issued",
		}),
		VerifySuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trafix_verification_successes_total",
			Help: "Total successful code verifications",
		}),
		VerifyFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trafix_verification_failures_total",
			Help: "Failed code verifications by reason",
		}, []string{"reason"}),
		SweptChallenges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trafix_verification_challenges_swept_total",
			Help: "Expired challenges removed by the sweeper",
		}),
	}
}
