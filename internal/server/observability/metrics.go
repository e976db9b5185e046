// Package observability serves Prometheus metrics and health probes over
// HTTP and records the outcome of every users.Service operation.
package observability

import (
	"github.com/dmitrijs2005/gophauth/internal/server/users"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics implements users.Metrics on top of a Prometheus counter.
type Metrics struct {
	OperationsTotal *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gophauth_auth_operations_total",
				Help: "Total number of auth operations by operation and result",
			},
			[]string{"operation", "result"},
		),
	}

	reg.MustRegister(m.OperationsTotal)

	return m
}

func (m *Metrics) RecordOperation(operation string, kind users.Kind) {
	m.OperationsTotal.WithLabelValues(operation, string(kind)).Inc()
}
