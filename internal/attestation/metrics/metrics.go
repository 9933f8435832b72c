package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verifier and the gate.
type Metrics struct {
	// Verifier outcomes by result ("accepted", "invalid_signature", ...)
	VerifyOutcome *prometheus.CounterVec

	// Gate outcomes by result ("allowed", "not_yet_verified", ...)
	InteractOutcome *prometheus.CounterVec

	// Latency per operation ("verify", "interact", "status")
	OperationLatency *prometheus.HistogramVec

	// Interaction records that could not be delivered
	PublishFailures prometheus.Counter
}

// New registers the attestation metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the attestation metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		VerifyOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "proofgate_attestation_verify_total",
			Help: "Attestation submissions by result",
		}, []string{"result"}),

		InteractOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "proofgate_gate_interact_total",
			Help: "Gated interaction attempts by result",
		}, []string{"result"}),

		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "proofgate_attestation_operation_duration_seconds",
			Help:    "Duration of registry operations including store access",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"operation"}),

		PublishFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "proofgate_interaction_publish_failures_total",
			Help: "Interaction records that failed to publish",
		}),
	}
}

func (m *Metrics) IncrementVerify(result string) {
	if m != nil {
		m.VerifyOutcome.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncrementInteract(result string) {
	if m != nil {
		m.InteractOutcome.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) ObserveLatency(operation string, d time.Duration) {
	if m != nil {
		m.OperationLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementPublishFailures() {
	if m != nil {
		m.PublishFailures.Inc()
	}
}
