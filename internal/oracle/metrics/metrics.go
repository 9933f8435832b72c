package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the oracle's challenge outcomes.
type Metrics struct {
	Issued *prometheus.CounterVec
}

// New registers the oracle metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Issued: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "proofgate_oracle_attestations_total",
			Help: "Attestation requests to the oracle by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncrementIssued(result string) {
	if m != nil {
		m.Issued.WithLabelValues(result).Inc()
	}
}
