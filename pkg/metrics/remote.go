package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RemoteMetrics records calls to the workspace API and how often the
// service had to fall back to local data.
type RemoteMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	fallback *prometheus.CounterVec
}

// NewRemoteMetrics registers the remote call metrics on the provided registerer.
func NewRemoteMetrics(reg prometheus.Registerer) *RemoteMetrics {
	if reg == nil {
		return &RemoteMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "remote_call_duration_seconds",
		Help:    "Duration of workspace API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "remote_call_success_total",
		Help: "Successful workspace API calls.",
	}, []string{"op"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "remote_call_failure_total",
		Help: "Failed workspace API calls.",
	}, []string{"op"})
	fallback := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "local_fallback_total",
		Help: "Operations served from local data after a remote failure.",
	}, []string{"op"})
	reg.MustRegister(duration, success, failure, fallback)
	return &RemoteMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		fallback: fallback,
	}
}

// ObserveCall records duration and outcome for one remote operation.
func (m *RemoteMetrics) ObserveCall(op string, duration time.Duration, err error) {
	if m == nil || m.duration == nil {
		return
	}
	op = normalizeLabel(op)
	m.duration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		m.failure.WithLabelValues(op).Inc()
		return
	}
	m.success.WithLabelValues(op).Inc()
}

// IncFallback counts an operation answered by the local store.
func (m *RemoteMetrics) IncFallback(op string) {
	if m == nil || m.fallback == nil {
		return
	}
	m.fallback.WithLabelValues(normalizeLabel(op)).Inc()
}

func normalizeLabel(op string) string {
	if op == "" {
		return "unknown"
	}
	return op
}
