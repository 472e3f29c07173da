// Package metrics exposes prometheus counters for the catalog service.
package metrics

import (
	"katalog/internal/validation"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors updated by the HTTP boundary.
type Metrics struct {
	Validations   *prometheus.CounterVec
	Violations    *prometheus.CounterVec
	ProductsSaved prometheus.Counter
	SaveFailures  prometheus.Counter
	Requests      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "katalog",
			Name:      "validations_total",
			Help:      "Product records validated, by outcome.",
		}, []string{"outcome"}),
		Violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "katalog",
			Name:      "violations_total",
			Help:      "Constraint violations reported, by field.",
		}, []string{"field"}),
		ProductsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "katalog",
			Name:      "products_saved_total",
			Help:      "Products persisted successfully.",
		}),
		SaveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "katalog",
			Name:      "product_save_failures_total",
			Help:      "Product saves rejected by the store.",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "katalog",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method and status code.",
		}, []string{"method", "status"}),
	}
	reg.MustRegister(m.Validations, m.Violations, m.ProductsSaved, m.SaveFailures, m.Requests)
	return m
}

// ObserveValidation records the outcome of one validation call.
func (m *Metrics) ObserveValidation(violations validation.Violations) {
	if violations.Valid() {
		m.Validations.WithLabelValues("valid").Inc()
		return
	}
	m.Validations.WithLabelValues("invalid").Inc()
	for _, v := range violations {
		m.Violations.WithLabelValues(string(v.Field)).Inc()
	}
}
