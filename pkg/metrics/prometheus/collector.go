// Package prometheus is the Prometheus-backed implementation of the
// collector's metrics interfaces, adapted from the teacher's
// promauto.With(reg) convention.
package prometheus

import (
	"time"

	"github.com/mozilla-services/antenna/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CollectorMetrics is the Prometheus implementation backing pkg/mover's
// Metrics interface plus the Submit Handler and Throttler observations.
type CollectorMetrics struct {
	saveCrashDropped    prometheus.Counter
	publishCrashDropped prometheus.Counter
	saveDuration        prometheus.Histogram
	publishDuration     prometheus.Histogram
	totalDuration       prometheus.Histogram
	queueDepth          prometheus.Gauge

	submitsTotal    *prometheus.CounterVec
	throttleVerdict *prometheus.CounterVec
	parserFailures  *prometheus.CounterVec
	payloadBytes    prometheus.Histogram
}

// New creates a new Prometheus-backed CollectorMetrics instance under
// namespace. Returns nil if metrics are not enabled (InitRegistry not
// called); every caller accepts a nil metrics interface as "disabled".
func New(namespace string) *CollectorMetrics {
	if !metrics.IsEnabled() {
		return nil
	}
	reg := metrics.GetRegistry()

	durationBuckets := []float64{10, 50, 100, 500, 1000, 5000, 10000, 30000}

	return &CollectorMetrics{
		saveCrashDropped: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "save_crash_dropped_total",
			Help:      "Crashes dropped after exhausting storage retries or a permanent storage error.",
		}),
		publishCrashDropped: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_crash_dropped_total",
			Help:      "Crashes whose publish failed after retries; the crash was still saved.",
		}),
		saveDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "save_duration_milliseconds",
			Help:      "Time spent in Storage.Save, including retries.",
			Buckets:   durationBuckets,
		}),
		publishDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_duration_milliseconds",
			Help:      "Time spent in Publish.Publish, including retries.",
			Buckets:   durationBuckets,
		}),
		totalDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "crash_handling_duration_milliseconds",
			Help:      "Total mover handling time for one crash, save through publish.",
			Buckets:   durationBuckets,
		}),
		queueDepth: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "handoff_queue_depth",
			Help:      "Current occupancy of the hand-off queue.",
		}),
		submitsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submits_total",
			Help:      "Submit Handler outcomes by result.",
		}, []string{"result"}),
		throttleVerdict: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "throttle_rule_total",
			Help:      "Throttler verdicts by rule name.",
		}, []string{"rule", "verdict"}),
		parserFailures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parser_failures_total",
			Help:      "Parser failures by reason.",
		}, []string{"reason"}),
		payloadBytes: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submit_payload_bytes",
			Help:      "Size of incoming submission bodies.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}),
	}
}

// SaveCrashDropped implements pkg/mover.Metrics.
func (c *CollectorMetrics) SaveCrashDropped() {
	if c == nil {
		return
	}
	c.saveCrashDropped.Inc()
}

// PublishCrashDropped implements pkg/mover.Metrics.
func (c *CollectorMetrics) PublishCrashDropped() {
	if c == nil {
		return
	}
	c.publishCrashDropped.Inc()
}

// SaveDuration implements pkg/mover.Metrics.
func (c *CollectorMetrics) SaveDuration(d time.Duration) {
	if c == nil {
		return
	}
	c.saveDuration.Observe(float64(d.Milliseconds()))
}

// PublishDuration implements pkg/mover.Metrics.
func (c *CollectorMetrics) PublishDuration(d time.Duration) {
	if c == nil {
		return
	}
	c.publishDuration.Observe(float64(d.Milliseconds()))
}

// TotalDuration implements pkg/mover.Metrics.
func (c *CollectorMetrics) TotalDuration(d time.Duration) {
	if c == nil {
		return
	}
	c.totalDuration.Observe(float64(d.Milliseconds()))
}

// QueueDepth implements pkg/mover.Metrics.
func (c *CollectorMetrics) QueueDepth(n int) {
	if c == nil {
		return
	}
	c.queueDepth.Set(float64(n))
}

// SubmitResult records a Submit Handler outcome (accepted, rejected,
// queue_full, parse_error).
func (c *CollectorMetrics) SubmitResult(result string) {
	if c == nil {
		return
	}
	c.submitsTotal.WithLabelValues(result).Inc()
}

// ThrottleVerdict records which rule produced which verdict.
func (c *CollectorMetrics) ThrottleVerdict(rule, verdict string) {
	if c == nil {
		return
	}
	c.throttleVerdict.WithLabelValues(rule, verdict).Inc()
}

// ParserFailure records a parser failure by reason code.
func (c *CollectorMetrics) ParserFailure(reason string) {
	if c == nil {
		return
	}
	c.parserFailures.WithLabelValues(reason).Inc()
}

// PayloadSize records the size of an incoming submission body.
func (c *CollectorMetrics) PayloadSize(n int64) {
	if c == nil {
		return
	}
	c.payloadBytes.Observe(float64(n))
}
