package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutboxMetrics records publisher loop outcomes.
type OutboxMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	dlq      *prometheus.CounterVec
}

// NewOutboxMetrics registers the outbox publisher metrics on the provided registerer.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbox_publish_duration_seconds",
		Help:    "Duration of individual event publishes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_publish_success",
		Help: "Events published to the broker.",
	}, []string{"event_type"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_publish_failure",
		Help: "Publish attempts that failed.",
	}, []string{"event_type"})
	dlq := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_dlq_total",
		Help: "Events moved to the dead letter queue.",
	}, []string{"event_type"})
	reg.MustRegister(duration, success, failure, dlq)
	return &OutboxMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		dlq:      dlq,
	}
}

// ObserveDuration records how long one publish took.
func (m *OutboxMetrics) ObserveDuration(eventType string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(eventType)).Observe(duration.Seconds())
}

// IncSuccess increments the publish success counter.
func (m *OutboxMetrics) IncSuccess(eventType string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailure increments the publish failure counter.
func (m *OutboxMetrics) IncFailure(eventType string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncDLQ increments the dead letter counter.
func (m *OutboxMetrics) IncDLQ(eventType string) {
	if m == nil || m.dlq == nil {
		return
	}
	m.dlq.WithLabelValues(normalizeLabel(eventType)).Inc()
}
