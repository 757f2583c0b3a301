// Package metrics provides the Prometheus implementation of the engine's
// metrics reporting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sufield/certauth/internal/core/services"
)

var (
	tokenValidationCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "certauth_token_validation_total",
		Help: "Total number of token validations by outcome",
	}, []string{"outcome"})

	registrationCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "certauth_registration_total",
		Help: "Total number of registration attempts",
	}, []string{"result"}) // result: success, failure

	authenticationCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "certauth_authentication_total",
		Help: "Total number of authentication attempts",
	}, []string{"result"}) // result: success, failure
)

// PrometheusMetrics implements services.MetricsReporter using Prometheus.
type PrometheusMetrics struct{}

// NewPrometheusMetrics creates a new Prometheus metrics reporter.
func NewPrometheusMetrics() services.MetricsReporter {
	return &PrometheusMetrics{}
}

// RecordValidation records a token validation outcome.
func (m *PrometheusMetrics) RecordValidation(outcome string) {
	tokenValidationCounter.WithLabelValues(outcome).Inc()
}

// RecordRegistration records a register attempt result.
func (m *PrometheusMetrics) RecordRegistration(success bool) {
	registrationCounter.WithLabelValues(resultLabel(success)).Inc()
}

// RecordAuthentication records an authenticate attempt result.
func (m *PrometheusMetrics) RecordAuthentication(success bool) {
	authenticationCounter.WithLabelValues(resultLabel(success)).Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
