// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the application collectors so tests can use their own registry.
type Metrics struct {
	AIRequests    *prometheus.CounterVec
	Notifications *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AIRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diet_ai_requests_total",
			Help: "Generative AI calls by operation and outcome (ok, service_unavailable, malformed_response, disabled).",
		}, []string{"operation", "outcome"}),
		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diet_notifications_total",
			Help: "Notification attempts by event type and outcome (emitted, throttled, error).",
		}, []string{"event", "outcome"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "diet_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// ObserveAI counts one AI call. A nil receiver is a no-op.
func (m *Metrics) ObserveAI(operation, outcome string) {
	if m == nil {
		return
	}
	m.AIRequests.WithLabelValues(operation, outcome).Inc()
}

// ObserveNotification counts one notification attempt. A nil receiver is a no-op.
func (m *Metrics) ObserveNotification(event, outcome string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(event, outcome).Inc()
}
