package pointsmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PointsMetrics records points engine activity.
type PointsMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)
	RecordLedgerEntries(ctx context.Context, kind string, count int)
	RecordSkippedDeltas(ctx context.Context, kind string, count int)
	RecordEventCompletion(ctx context.Context, outcome string)
}

type prometheusMetrics struct {
	attempts    *prometheus.CounterVec
	successes   *prometheus.CounterVec
	failures    *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	ledger      *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	completions *prometheus.CounterVec
}

// NewPrometheus registers the points collectors on reg.
func NewPrometheus(reg prometheus.Registerer, namespace string) (PointsMetrics, error) {
	m := &prometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "points", Name: "operation_attempts_total",
			Help: "Service operations started.",
		}, []string{"operation", "service"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "points", Name: "operation_success_total",
			Help: "Service operations that completed without an infrastructure error.",
		}, []string{"operation", "service"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "points", Name: "operation_failures_total",
			Help: "Service operations that returned an error or panicked.",
		}, []string{"operation", "service"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "points", Name: "operation_duration_seconds",
			Help:    "Service operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		ledger: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "points", Name: "ledger_entries_total",
			Help: "Ledger entries written.",
		}, []string{"kind"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "points", Name: "skipped_deltas_total",
			Help: "Deltas dropped because no membership matched.",
		}, []string{"kind"}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "points", Name: "event_completions_total",
			Help: "Completion triggers by outcome.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{m.attempts, m.successes, m.failures, m.durations, m.ledger, m.skipped, m.completions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.durations.WithLabelValues(operation, service).Observe(d.Seconds())
}

func (m *prometheusMetrics) RecordLedgerEntries(_ context.Context, kind string, count int) {
	m.ledger.WithLabelValues(kind).Add(float64(count))
}

func (m *prometheusMetrics) RecordSkippedDeltas(_ context.Context, kind string, count int) {
	m.skipped.WithLabelValues(kind).Add(float64(count))
}

func (m *prometheusMetrics) RecordEventCompletion(_ context.Context, outcome string) {
	m.completions.WithLabelValues(outcome).Inc()
}

// NoOpMetrics discards everything.
type NoOpMetrics struct{}

// NewNoop returns metrics that record nothing.
func NewNoop() PointsMetrics { return &NoOpMetrics{} }

func (*NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (*NoOpMetrics) RecordLedgerEntries(context.Context, string, int)                       {}
func (*NoOpMetrics) RecordSkippedDeltas(context.Context, string, int)                       {}
func (*NoOpMetrics) RecordEventCompletion(context.Context, string)                          {}
