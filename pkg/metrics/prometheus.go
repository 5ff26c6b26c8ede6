// Package metrics provides Prometheus metrics for the engagement scoring engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the scoring engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Batch pass metrics
	batchPasses   prometheus.Counter
	batchFailures prometheus.Counter
	batchDuration prometheus.Histogram

	// Per-client scoring metrics
	clientsScored   prometheus.Counter
	clientsSkipped  prometheus.Counter
	scoringDuration prometheus.Histogram

	// Cache metrics
	cacheSize             prometheus.Gauge
	cacheLastComputedUnix prometheus.Gauge

	// Report metrics
	reportsGenerated prometheus.Counter

	// Fleet metrics
	churnRiskClients *prometheus.GaugeVec
	averageScore     prometheus.Gauge

	// Operational metrics
	workerCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "engage",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.batchPasses = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_passes_total",
		Help:      "Total number of completed batch scoring passes",
	})

	m.batchFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_failures_total",
		Help:      "Total number of batch passes that failed before completing",
	})

	m.batchDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_duration_seconds",
		Help:      "Duration of a full batch scoring pass",
		Buckets:   m.histogramBuckets,
	})

	m.clientsScored = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "clients_scored_total",
		Help:      "Total number of clients scored successfully",
	})

	m.clientsSkipped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "clients_skipped_total",
		Help:      "Total number of clients skipped due to per-client errors",
	})

	m.scoringDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "client_scoring_duration_seconds",
		Help:      "Duration of scoring a single client",
		Buckets:   m.histogramBuckets,
	})

	m.cacheSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_scores",
		Help:      "Number of engagement scores currently cached",
	})

	m.cacheLastComputedUnix = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_last_computed_timestamp_seconds",
		Help:      "Unix timestamp of the last completed batch pass",
	})

	m.reportsGenerated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reports_generated_total",
		Help:      "Total number of fleet engagement reports generated",
	})

	m.churnRiskClients = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "churn_risk_clients",
		Help:      "Number of cached clients per churn risk level",
	}, []string{"risk"})

	m.averageScore = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fleet_average_score",
		Help:      "Fleet-wide average engagement score from the last pass",
	})

	m.workerCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Configured number of batch scoring workers",
	})
}

// Package-level helpers that operate on the global manager.

func RecordBatchPass(duration time.Duration) {
	globalManager.batchPasses.Inc()
	globalManager.batchDuration.Observe(duration.Seconds())
}

func RecordBatchFailure() {
	globalManager.batchFailures.Inc()
}

func RecordClientScored(duration time.Duration) {
	globalManager.clientsScored.Inc()
	globalManager.scoringDuration.Observe(duration.Seconds())
}

func RecordClientSkipped() {
	globalManager.clientsSkipped.Inc()
}

func RecordReportGenerated() {
	globalManager.reportsGenerated.Inc()
}

func UpdateCacheSize(count int) {
	globalManager.cacheSize.Set(float64(count))
}

func UpdateCacheLastComputed(t time.Time) {
	globalManager.cacheLastComputedUnix.Set(float64(t.Unix()))
}

func UpdateChurnRiskClients(risk string, count int) {
	globalManager.churnRiskClients.WithLabelValues(risk).Set(float64(count))
}

func UpdateAverageScore(score float64) {
	globalManager.averageScore.Set(score)
}

func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// GetRegistry returns the custom registry for the /metrics handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
