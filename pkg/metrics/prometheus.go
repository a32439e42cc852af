// Package metrics provides Prometheus metrics for the rinkrank service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Latency buckets in milliseconds. Pipeline runs over a full dataset sit in
// the low milliseconds; HTTP adds serialization on top.
var defaultLatencyBuckets = []float64{0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000} //nolint:gochecknoglobals // shared default

// Manager manages all Prometheus metrics for the rinkrank service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Ranking pipeline
	pipelineRuns    *prometheus.CounterVec
	pipelineLatency prometheus.Histogram
	cohortSize      *prometheus.GaugeVec
	leaderboardRows prometheus.Histogram

	// Dataset
	datasetRecords      *prometheus.GaugeVec
	datasetDuplicates   prometheus.Counter
	datasetLoadDuration prometheus.Gauge
	datasetLastLoadUnix prometheus.Gauge
	datasetFilesLoaded  prometheus.Counter
	datasetLoadErrors   *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// MCP
	toolCalls *prometheus.CounterVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "rinkrank",
		subsystem:        "leaderboard",
		histogramBuckets: defaultLatencyBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.pipelineRuns = auto.NewCounterVec(
		m.counterOpts("pipeline_runs_total", "Total number of ranking pipeline runs by mode"),
		[]string{"sum_seasons", "per_game"},
	)
	m.pipelineLatency = auto.NewHistogram(
		m.histogramOpts("pipeline_latency_milliseconds", "Ranking pipeline latency in milliseconds", m.histogramBuckets),
	)
	m.cohortSize = auto.NewGaugeVec(
		m.gaugeOpts("cohort_size", "Number of records in the last scored cohort by kind"),
		[]string{"kind"},
	)
	m.leaderboardRows = auto.NewHistogram(
		m.histogramOpts("leaderboard_rows", "Number of rows returned per leaderboard request", prometheus.ExponentialBuckets(1, 4, 8)),
	)

	m.datasetRecords = auto.NewGaugeVec(
		m.gaugeOpts("dataset_records", "Number of loaded player-season records by kind"),
		[]string{"kind"},
	)
	m.datasetDuplicates = auto.NewCounter(
		m.counterOpts("dataset_duplicates_total", "Total number of duplicate player-season rows dropped while loading"),
	)
	m.datasetLoadDuration = auto.NewGauge(
		m.gaugeOpts("dataset_load_duration_milliseconds", "Duration of the last dataset load in milliseconds"),
	)
	m.datasetLastLoadUnix = auto.NewGauge(
		m.gaugeOpts("dataset_last_load_unix", "Unix timestamp of the last dataset load"),
	)
	m.datasetFilesLoaded = auto.NewCounter(
		m.counterOpts("dataset_files_loaded_total", "Total number of dataset files read"),
	)
	m.datasetLoadErrors = auto.NewCounterVec(
		m.counterOpts("dataset_load_errors_total", "Total number of dataset load failures by source"),
		[]string{"source"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.toolCalls = auto.NewCounterVec(
		m.counterOpts("mcp_tool_calls_total", "Total number of MCP tool calls by tool and outcome"),
		[]string{"tool", "outcome"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(
		m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"),
	)
	m.systemGoroutineCount = auto.NewGauge(
		m.gaugeOpts("system_goroutine_count", "Number of goroutines"),
	)
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// Ranking pipeline.

// RecordPipelineRun counts one pipeline run and its latency in milliseconds.
func RecordPipelineRun(sumSeasons, perGame bool, latencyMs float64) {
	globalManager.pipelineRuns.WithLabelValues(strconv.FormatBool(sumSeasons), strconv.FormatBool(perGame)).Inc()
	globalManager.pipelineLatency.Observe(latencyMs)
}

// UpdateCohortSize sets the size of the last scored cohort of kind.
func UpdateCohortSize(kind string, size int) {
	globalManager.cohortSize.WithLabelValues(kind).Set(float64(size))
}

// RecordLeaderboardRows observes the number of rows returned.
func RecordLeaderboardRows(n int) {
	globalManager.leaderboardRows.Observe(float64(n))
}

// Dataset.

// UpdateDatasetRecords sets the number of loaded records of kind.
func UpdateDatasetRecords(kind string, count int) {
	globalManager.datasetRecords.WithLabelValues(kind).Set(float64(count))
}

// RecordDatasetDuplicates adds n dropped duplicate rows.
func RecordDatasetDuplicates(n int) {
	if n > 0 {
		globalManager.datasetDuplicates.Add(float64(n))
	}
}

// RecordDatasetFileLoaded counts one dataset file read.
func RecordDatasetFileLoaded() {
	globalManager.datasetFilesLoaded.Inc()
}

// RecordDatasetLoad records the duration of a completed load and its time.
func RecordDatasetLoad(durationMs float64, unix int64) {
	globalManager.datasetLoadDuration.Set(durationMs)
	globalManager.datasetLastLoadUnix.Set(float64(unix))
}

// RecordDatasetLoadError counts a failed load from source.
func RecordDatasetLoadError(source string) {
	globalManager.datasetLoadErrors.WithLabelValues(source).Inc()
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordToolCall counts an MCP tool call; outcome is "ok" or "error".
func RecordToolCall(tool, outcome string) {
	globalManager.toolCalls.WithLabelValues(tool, outcome).Inc()
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
