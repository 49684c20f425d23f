// Package metrics holds the prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

type Metrics struct {
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	Purchases         *prometheus.CounterVec
	PurchaseRollbacks prometheus.Counter
	GatewayRequests   *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "purchases_total",
			Help:      "Cart purchases by outcome.",
		}, []string{"outcome"}),
		PurchaseRollbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "rollbacks_total",
			Help:      "Purchases whose stock decrements had to be restored.",
		}),
		GatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "gateway_requests_total",
			Help:      "Calls to the payment gateway by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}
	reg.MustRegister(m.HTTPRequests, m.HTTPDuration, m.Purchases, m.PurchaseRollbacks, m.GatewayRequests)
	return m
}

// Discard returns collectors registered nowhere; handy in tests.
func Discard() *Metrics {
	return New(prometheus.NewRegistry())
}
