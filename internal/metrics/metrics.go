package metrics

import (
	"github.com/KirkDiggler/tally/internal/services/counting"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tally"

// Metrics counts counting game outcomes. A nil *Metrics records nothing.
type Metrics struct {
	submissions    *prometheus.CounterVec
	rescues        *prometheus.CounterVec
	creditsAwarded prometheus.Counter
	creditsSpent   prometheus.Counter
}

// New registers the outcome counters with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submissions_total",
				Help:      "Submissions processed by the counting engine, by result",
			},
			[]string{"result", "reason"},
		),
		rescues: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rescues_total",
				Help:      "Rescue requests processed by the counting engine, by result",
			},
			[]string{"result"},
		),
		creditsAwarded: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "credits_awarded_total",
				Help:      "Credits paid out for correct numbers",
			},
		),
		creditsSpent: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "credits_spent_total",
				Help:      "Credits spent on rescues",
			},
		),
	}
}

// ObserveSubmission records the outcome of a submission
func (m *Metrics) ObserveSubmission(output *counting.ProcessSubmissionOutput) {
	if m == nil || output == nil {
		return
	}

	m.submissions.WithLabelValues(string(output.Result), string(output.Reason)).Inc()
	if output.CreditsAwarded > 0 {
		m.creditsAwarded.Add(float64(output.CreditsAwarded))
	}
}

// ObserveRescue records the outcome of a rescue request
func (m *Metrics) ObserveRescue(output *counting.RequestRescueOutput) {
	if m == nil || output == nil {
		return
	}

	m.rescues.WithLabelValues(string(output.Result)).Inc()
	if output.Result == counting.RescueResultRescued && output.CostPaid > 0 {
		m.creditsSpent.Add(float64(output.CostPaid))
	}
}
