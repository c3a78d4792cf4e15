package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// metricsOnce ensures metrics are registered only once
	metricsOnce sync.Once

	// invocationsTotal tracks responder invocations by outcome
	invocationsTotal *prometheus.CounterVec

	// invocationDuration tracks end-to-end latency of an invocation
	invocationDuration prometheus.Histogram

	// suspensionsTotal tracks key suspension attempts by status
	suspensionsTotal *prometheus.CounterVec

	// logRetrievalsTotal tracks audit log retrievals by status
	logRetrievalsTotal *prometheus.CounterVec

	// findingsTotal tracks emitted findings by kind and severity
	findingsTotal *prometheus.CounterVec

	// recordsSkippedTotal tracks audit records that could not be parsed
	recordsSkippedTotal prometheus.Counter

	// notificationsTotal tracks delivery attempts by channel and status
	notificationsTotal *prometheus.CounterVec

	// clientErrorsTotal tracks outbound HTTP client errors by client and type
	clientErrorsTotal *prometheus.CounterVec
)

// Init registers all Prometheus metrics.
// This should be called once at application startup
func Init() {
	metricsOnce.Do(func() {
		invocationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keyguard_invocations_total",
				Help: "Total number of exposed key invocations by outcome",
			},
			[]string{"outcome"},
		)

		invocationDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "keyguard_invocation_duration_seconds",
				Help:    "Duration of exposed key invocations in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
		)

		suspensionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keyguard_key_suspensions_total",
				Help: "Total number of access key suspension attempts by status",
			},
			[]string{"status"},
		)

		logRetrievalsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keyguard_log_retrievals_total",
				Help: "Total number of audit log retrievals by status",
			},
			[]string{"status"},
		)

		findingsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keyguard_findings_total",
				Help: "Total number of suspicious activity findings by type and severity",
			},
			[]string{"type", "severity"},
		)

		recordsSkippedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "keyguard_log_records_skipped_total",
				Help: "Total number of audit records skipped because they could not be parsed",
			},
		)

		notificationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keyguard_notifications_total",
				Help: "Total number of notification deliveries by channel and status",
			},
			[]string{"channel", "status"},
		)

		clientErrorsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keyguard_http_client_errors_total",
				Help: "Total number of outbound HTTP client errors by client and error type",
			},
			[]string{"client", "error_type"},
		)
	})
}

// RecordInvocation records a finished invocation
// outcome: "completed", "rejected", "failed"
func RecordInvocation(outcome string, duration time.Duration) {
	if invocationsTotal != nil {
		invocationsTotal.WithLabelValues(outcome).Inc()
	}
	if invocationDuration != nil {
		invocationDuration.Observe(duration.Seconds())
	}
}

// RecordSuspension records a key suspension attempt ("success", "error")
func RecordSuspension(status string) {
	if suspensionsTotal != nil {
		suspensionsTotal.WithLabelValues(status).Inc()
	}
}

// RecordLogRetrieval records an audit log retrieval ("success", "error")
func RecordLogRetrieval(status string) {
	if logRetrievalsTotal != nil {
		logRetrievalsTotal.WithLabelValues(status).Inc()
	}
}

// RecordFinding records a single finding
func RecordFinding(kind, severity string) {
	if findingsTotal != nil {
		findingsTotal.WithLabelValues(kind, severity).Inc()
	}
}

func RecordSkippedRecords(n int) {
	if recordsSkippedTotal != nil && n > 0 {
		recordsSkippedTotal.Add(float64(n))
	}
}

// RecordNotification records a delivery attempt on one channel
func RecordNotification(channel, status string) {
	if notificationsTotal != nil {
		notificationsTotal.WithLabelValues(channel, status).Inc()
	}
}

// RecordClientError records an outbound HTTP client error
// errorType: "timeout", "auth", "rate_limit", "server_error", "connection", "http_error", "circuit_open"
func RecordClientError(client, errorType string) {
	if clientErrorsTotal != nil {
		clientErrorsTotal.WithLabelValues(client, errorType).Inc()
	}
}

// Timer is a helper for timing invocations
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer for measuring invocation duration
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the time since the timer started
func (t *Timer) Elapsed() time.Duration {
	if t == nil {
		return 0
	}
	return time.Since(t.start)
}
