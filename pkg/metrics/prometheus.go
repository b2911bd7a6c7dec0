// Package metrics provides Prometheus metrics for the SwordFinder service.
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

// Manager manages all Prometheus metrics for the SwordFinder service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Core Business Metrics - scoring pipeline
	datesComputed     prometheus.Counter
	candidatesFound   prometheus.Counter
	swingsScored      prometheus.Counter
	scoringErrors     prometheus.Counter
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
	computeDuration   prometheus.Histogram
	repositoryLatency prometheus.Histogram

	// Video Metrics - resolver and downloader
	resolverProbes   *prometheus.CounterVec
	resolverNotFound prometheus.Counter
	downloadAttempts prometheus.Counter
	downloadFailures prometheus.Counter
	downloadSkips    prometheus.Counter
	downloadBytes    prometheus.Counter
	downloadDuration prometheus.Histogram

	// Job Metrics - bulk update runs
	jobBatches     *prometheus.CounterVec
	jobRowsUpdated *prometheus.CounterVec
	jobErrors      *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "swordfinder",
		subsystem:        "core",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.datesComputed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dates_computed_total",
		Help:      "Total number of dates scored from scratch",
	})

	m.candidatesFound = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidates_found_total",
		Help:      "Total number of pitch events passing the candidate filter",
	})

	m.swingsScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "swings_scored_total",
		Help:      "Total number of scored swings persisted",
	})

	m.scoringErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_errors_total",
		Help:      "Total number of scoring validation failures",
	})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "result_cache_hits_total",
		Help:      "Total number of per-date result cache hits",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "result_cache_misses_total",
		Help:      "Total number of per-date result cache misses",
	})

	m.computeDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "compute_duration_milliseconds",
		Help:      "Histogram of per-date scoring pipeline duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.repositoryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_latency_milliseconds",
		Help:      "Histogram of repository operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.resolverProbes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "video",
		Name:      "resolver_probes_total",
		Help:      "Total number of variant existence probes by variant and outcome",
	}, []string{"variant", "outcome"})

	m.resolverNotFound = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "video",
		Name:      "resolver_not_found_total",
		Help:      "Total number of identifiers with no playable media URL",
	})

	m.downloadAttempts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "video",
		Name:      "download_attempts_total",
		Help:      "Total number of clip download attempts",
	})

	m.downloadFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "video",
		Name:      "download_failures_total",
		Help:      "Total number of clip downloads that exhausted retries",
	})

	m.downloadSkips = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "video",
		Name:      "download_skips_total",
		Help:      "Total number of downloads skipped because the file already exists",
	})

	m.downloadBytes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "video",
		Name:      "download_bytes_total",
		Help:      "Total bytes written for downloaded clips",
	})

	m.downloadDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "video",
		Name:      "download_duration_milliseconds",
		Help:      "Histogram of successful clip download duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.jobBatches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "jobs",
		Name:      "batches_committed_total",
		Help:      "Total number of batches committed by bulk jobs",
	}, []string{"job"})

	m.jobRowsUpdated = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "jobs",
		Name:      "rows_updated_total",
		Help:      "Total number of rows updated by bulk jobs",
	}, []string{"job"})

	m.jobErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "jobs",
		Name:      "errors_total",
		Help:      "Total number of bulk job runs ending in error",
	}, []string{"job"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})
}

// RecordDateComputed increments the dates computed counter.
func RecordDateComputed() {
	globalManager.datesComputed.Inc()
}

// RecordCandidatesFound adds to the candidates found counter.
func RecordCandidatesFound(n int) {
	globalManager.candidatesFound.Add(float64(n))
}

// RecordSwingScored increments the swings scored counter.
func RecordSwingScored() {
	globalManager.swingsScored.Inc()
}

// RecordScoringError increments the scoring validation error counter.
func RecordScoringError() {
	globalManager.scoringErrors.Inc()
}

// RecordCacheHit increments the result cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the result cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordComputeDuration records per-date pipeline duration in milliseconds.
func RecordComputeDuration(latencyMs float64) {
	globalManager.computeDuration.Observe(latencyMs)
}

// RecordRepositoryLatency records repository operation latency in milliseconds.
func RecordRepositoryLatency(latencyMs float64) {
	globalManager.repositoryLatency.Observe(latencyMs)
}

// RecordResolverProbe records one variant existence probe.
func RecordResolverProbe(variant, outcome string) {
	globalManager.resolverProbes.WithLabelValues(variant, outcome).Inc()
}

// RecordResolverNotFound increments the resolver not-found counter.
func RecordResolverNotFound() {
	globalManager.resolverNotFound.Inc()
}

// RecordDownloadAttempt increments the download attempt counter.
func RecordDownloadAttempt() {
	globalManager.downloadAttempts.Inc()
}

// RecordDownloadFailure increments the download failure counter.
func RecordDownloadFailure() {
	globalManager.downloadFailures.Inc()
}

// RecordDownloadSkip increments the already-on-disk skip counter.
func RecordDownloadSkip() {
	globalManager.downloadSkips.Inc()
}

// RecordDownloadBytes adds to the downloaded bytes counter.
func RecordDownloadBytes(n int64) {
	globalManager.downloadBytes.Add(float64(n))
}

// RecordDownloadDuration records a successful download duration in milliseconds.
func RecordDownloadDuration(latencyMs float64) {
	globalManager.downloadDuration.Observe(latencyMs)
}

// RecordJobBatch increments the committed batch counter for a job.
func RecordJobBatch(job string) {
	globalManager.jobBatches.WithLabelValues(job).Inc()
}

// RecordJobRowsUpdated adds to the updated row counter for a job.
func RecordJobRowsUpdated(job string, n int) {
	globalManager.jobRowsUpdated.WithLabelValues(job).Add(float64(n))
}

// RecordJobError increments the error counter for a job.
func RecordJobError(job string) {
	globalManager.jobErrors.WithLabelValues(job).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
