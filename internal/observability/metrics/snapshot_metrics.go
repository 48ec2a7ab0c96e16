// Package metrics exposes prometheus instrumentation for the snapshot worker
// and the reconciler.
package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config labels every metric with the emitting service and environment.
type Config struct {
	ServiceName string
	Environment string
}

type SnapshotMetrics struct {
	snapshotRuns      *prometheus.CounterVec
	snapshotDuration  prometheus.Histogram
	snapshotSkipped   prometheus.Gauge
	reconcileOutcomes *prometheus.CounterVec
	reportRowsSkipped prometheus.Counter
}

var (
	snapshotMetricsOnce sync.Once
	snapshotMetrics     *SnapshotMetrics
)

func Snapshot() *SnapshotMetrics {
	return SnapshotWithConfig(Config{})
}

func SnapshotWithConfig(cfg Config) *SnapshotMetrics {
	snapshotMetricsOnce.Do(func() {
		snapshotMetrics = newSnapshotMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return snapshotMetrics
}

func ResetSnapshotMetricsForTest() {
	snapshotMetricsOnce = sync.Once{}
	snapshotMetrics = nil
}

func newSnapshotMetrics(registerer prometheus.Registerer, cfg Config) *SnapshotMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "norra"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	snapshotRuns := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "norra_snapshot_runs_total",
			Help:        "Total snapshot computations by result.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // success | failed
	)

	snapshotDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:        "norra_snapshot_duration_seconds",
			Help:        "Duration of one snapshot computation over the full ledger.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
	)

	snapshotSkipped := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "norra_snapshot_skipped_records",
			Help:        "Ledger rows excluded from the most recent snapshot.",
			ConstLabels: constLabels,
		},
	)

	reconcileOutcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "norra_reconciliation_outcomes_total",
			Help:        "Reconciliation results by classification.",
			ConstLabels: constLabels,
		},
		[]string{"classification"},
	)

	reportRowsSkipped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "norra_report_rows_skipped_total",
			Help:        "Report rows excluded during import because they did not parse.",
			ConstLabels: constLabels,
		},
	)

	registerer.MustRegister(
		snapshotRuns,
		snapshotDuration,
		snapshotSkipped,
		reconcileOutcomes,
		reportRowsSkipped,
	)

	return &SnapshotMetrics{
		snapshotRuns:      snapshotRuns,
		snapshotDuration:  snapshotDuration,
		snapshotSkipped:   snapshotSkipped,
		reconcileOutcomes: reconcileOutcomes,
		reportRowsSkipped: reportRowsSkipped,
	}
}

func (m *SnapshotMetrics) ObserveSnapshotRun(result string, duration time.Duration, skipped int) {
	if m == nil {
		return
	}
	m.snapshotRuns.WithLabelValues(result).Inc()
	m.snapshotDuration.Observe(duration.Seconds())
	m.snapshotSkipped.Set(float64(skipped))
}

func (m *SnapshotMetrics) IncReconcileOutcome(classification string) {
	if m == nil {
		return
	}
	m.reconcileOutcomes.WithLabelValues(classification).Inc()
}

func (m *SnapshotMetrics) AddReportRowsSkipped(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.reportRowsSkipped.Add(float64(count))
}
