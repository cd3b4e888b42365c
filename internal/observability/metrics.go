package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wirebound",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wirebound",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	sessionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wirebound",
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session lifecycle transitions.",
		},
		[]string{"node", "from", "to"},
	)
	connectAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wirebound",
			Subsystem: "session",
			Name:      "connect_attempts_total",
			Help:      "Transport connect attempts.",
		},
		[]string{"node", "success"},
	)
	connectDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wirebound",
			Subsystem: "session",
			Name:      "connect_duration_seconds",
			Help:      "Time from first connect attempt to an open transport.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "success"},
	)
	messagesDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wirebound",
			Subsystem: "dispatch",
			Name:      "messages_total",
			Help:      "Inbound messages routed by urgency.",
		},
		[]string{"node", "urgency"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			sessionTransitions,
			connectAttempts,
			connectDuration,
			messagesDispatched,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordSessionTransition(node, from, to string) {
	RegisterMetrics()
	sessionTransitions.WithLabelValues(node, from, to).Inc()
}

func RecordConnect(node string, attempts int, duration time.Duration, success bool) {
	RegisterMetrics()
	successLabel := strconv.FormatBool(success)
	connectAttempts.WithLabelValues(node, successLabel).Add(float64(attempts))
	connectDuration.WithLabelValues(node, successLabel).Observe(duration.Seconds())
}

func RecordDispatch(node, urgency string) {
	RegisterMetrics()
	messagesDispatched.WithLabelValues(node, urgency).Inc()
}
