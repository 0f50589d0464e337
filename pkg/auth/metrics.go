package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters exported by the key cache and the validator.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	refreshes   *prometheus.CounterVec
	validations *prometheus.CounterVec
}

// NewMetrics registers the auth counters with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "jwks_refresh_total",
			Help:      "JWKS refresh attempts by result.",
		}, []string{"result"}),
		validations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "token_validation_total",
			Help:      "Bearer token validations by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) observeRefresh(err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) observeValidation(err error) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(Reason(err)).Inc()
}
