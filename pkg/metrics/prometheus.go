// Package metrics provides Prometheus metrics for the peerbench service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Benchmarking
	benchmarkRequests *prometheus.CounterVec
	benchmarkErrors   *prometheus.CounterVec
	pipelineDuration  *prometheus.HistogramVec
	cohortSize        prometheus.Histogram
	comparisonTiers   *prometheus.CounterVec
	gapUrgency        *prometheus.CounterVec

	// Jobs, queue and workers
	jobs             *prometheus.CounterVec
	jobsDuplicate    prometheus.Counter
	storedReports    prometheus.Gauge
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueRejected    *prometheus.CounterVec
	workerCount      prometheus.Gauge
	workerProcessing prometheus.Histogram

	// Peer pool snapshots
	poolSize            prometheus.Gauge
	poolLastRefreshUnix prometheus.Gauge
	poolRefreshes       *prometheus.CounterVec
	poolRefreshDuration prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
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
		namespace:        "peerbench",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.customLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.benchmarkRequests = auto.NewCounterVec(m.counter("requests_total",
		"Benchmarking operations by operation and outcome"), []string{"operation", "outcome"})
	m.benchmarkErrors = auto.NewCounterVec(m.counter("errors_total",
		"Benchmarking failures by error kind"), []string{"kind"})
	m.pipelineDuration = auto.NewHistogramVec(m.histogram("operation_duration_seconds",
		"Duration of benchmarking operations", m.histogramBuckets), []string{"operation"})
	m.cohortSize = auto.NewHistogram(m.histogram("cohort_size",
		"Number of peers selected per peer group", []float64{5, 10, 15, 20, 25, 50, 100}))
	m.comparisonTiers = auto.NewCounterVec(m.counter("comparisons_total",
		"Metric comparisons by significance tier"), []string{"tier"})
	m.gapUrgency = auto.NewCounterVec(m.counter("gaps_total",
		"Performance gaps by urgency"), []string{"urgency"})

	m.jobs = auto.NewCounterVec(m.counter("jobs_total",
		"Benchmark jobs by status transition"), []string{"status"})
	m.jobsDuplicate = auto.NewCounter(m.counter("jobs_duplicate_total",
		"Job submissions rejected as duplicates of an earlier request id"))
	m.storedReports = auto.NewGauge(m.gauge("jobs_stored",
		"Jobs currently held in the job store"))
	m.queueSize = auto.NewGauge(m.gauge("queue_size",
		"Jobs waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity",
		"Maximum queue capacity"))
	m.queueEnqueued = auto.NewCounter(m.counter("queue_enqueued_total",
		"Jobs accepted by the queue"))
	m.queueRejected = auto.NewCounterVec(m.counter("queue_rejected_total",
		"Jobs rejected by the queue by reason"), []string{"reason"})
	m.workerCount = auto.NewGauge(m.gauge("workers",
		"Number of running job workers"))
	m.workerProcessing = auto.NewHistogram(m.histogram("worker_processing_seconds",
		"Time a worker spends on one job", m.histogramBuckets))

	m.poolSize = auto.NewGauge(m.gauge("pool_candidates",
		"Candidates in the current peer pool snapshot"))
	m.poolLastRefreshUnix = auto.NewGauge(m.gauge("pool_last_refresh_unix",
		"Unix time of the last successful pool refresh"))
	m.poolRefreshes = auto.NewCounterVec(m.counter("pool_refreshes_total",
		"Peer pool refreshes by outcome"), []string{"outcome"})
	m.poolRefreshDuration = auto.NewHistogram(m.histogram("pool_refresh_duration_seconds",
		"Time spent loading a peer pool snapshot", m.histogramBuckets))

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total",
		"HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_seconds",
		"HTTP request duration", m.histogramBuckets), []string{"endpoint", "method", "status_code"})
}

// RecordOperation counts one benchmarking operation and observes its duration.
func (m *Manager) RecordOperation(operation, outcome string, d time.Duration) {
	m.benchmarkRequests.WithLabelValues(operation, outcome).Inc()
	m.pipelineDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordOperation records on the global manager.
func RecordOperation(operation, outcome string, d time.Duration) {
	globalManager.RecordOperation(operation, outcome, d)
}

// RecordError counts a failure by kind.
func RecordError(kind string) {
	globalManager.benchmarkErrors.WithLabelValues(kind).Inc()
}

// ObserveCohortSize records the size of a selected peer group.
func ObserveCohortSize(n int) {
	globalManager.cohortSize.Observe(float64(n))
}

// RecordComparisonTier counts a comparison by significance tier.
func RecordComparisonTier(tier string) {
	globalManager.comparisonTiers.WithLabelValues(tier).Inc()
}

// RecordGapUrgency counts a gap by urgency.
func RecordGapUrgency(urgency string) {
	globalManager.gapUrgency.WithLabelValues(urgency).Inc()
}

// RecordJob counts a job status transition.
func RecordJob(status string) {
	globalManager.jobs.WithLabelValues(status).Inc()
}

// RecordJobDuplicate counts a duplicate job submission.
func RecordJobDuplicate() {
	globalManager.jobsDuplicate.Inc()
}

// UpdateStoredJobs sets the number of jobs held in the store.
func UpdateStoredJobs(n int) {
	globalManager.storedReports.Set(float64(n))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted job.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueRejected counts a rejected job by reason.
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// ObserveWorkerProcessing records the time spent on one job.
func ObserveWorkerProcessing(d time.Duration) {
	globalManager.workerProcessing.Observe(d.Seconds())
}

// RecordPoolRefresh records a pool refresh attempt.
func RecordPoolRefresh(outcome string, d time.Duration) {
	globalManager.poolRefreshes.WithLabelValues(outcome).Inc()
	globalManager.poolRefreshDuration.Observe(d.Seconds())
}

// UpdatePoolSnapshot records the size and time of the current snapshot.
func UpdatePoolSnapshot(size int, at time.Time) {
	globalManager.poolSize.Set(float64(size))
	globalManager.poolLastRefreshUnix.Set(float64(at.Unix()))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// OutcomeOf maps an error to an outcome label.
func OutcomeOf(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
