// Package metrics provides Prometheus metrics for the attendance report service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline stage labels used with RecordStageLatency.
const (
	StageRead        = "read"
	StageReconstruct = "reconstruct"
	StageMerge       = "merge"
	StageFilter      = "filter"
	StageLookup      = "lookup"
	StageRender      = "render"
)

// Report outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Report pipeline
	reportsGenerated   *prometheus.CounterVec
	eventRowsParsed    prometheus.Counter
	eventRowsSkipped   prometheus.Counter
	participantsMerged prometheus.Counter
	participantsKept   prometheus.Counter
	stageLatency       *prometheus.HistogramVec
	reportRows         prometheus.Histogram
	lastReportUnix     prometheus.Gauge

	// Identity lookup
	lookupMisses prometheus.Counter
	lookupErrors prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level helpers

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // shared registry served on /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "attendance",
		subsystem:        "report",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.reportsGenerated = m.counterVec("reports_total", "Reports requested by output format and outcome", "format", "outcome")
	m.eventRowsParsed = m.counter("event_rows_parsed_total", "Join/leave rows accepted from uploaded logs")
	m.eventRowsSkipped = m.counter("event_rows_skipped_total", "Rows dropped for an unknown action or blank name")
	m.participantsMerged = m.counter("participants_merged_total", "Distinct participants whose presence was totalled")
	m.participantsKept = m.counter("participants_retained_total", "Participants at or above the duration threshold")
	m.stageLatency = m.histogramVec("stage_latency_milliseconds", "Latency of each report pipeline stage in milliseconds", "stage")
	m.reportRows = m.histogram("report_rows", "Rows written per report", prometheus.ExponentialBuckets(1, 2, 12))
	m.lastReportUnix = m.gauge("last_report_timestamp_seconds", "Unix time of the last successful report")

	m.lookupMisses = m.counter("identity_lookup_misses_total", "Names with no section/roll record")
	m.lookupErrors = m.counter("identity_lookup_errors_total", "Failed identity store lookups")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and error type", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint, method and type", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of operations that ended in an error", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes currently allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause in milliseconds", m.histogramBuckets)
}

// Report pipeline.

// RecordReport counts a report request for format with the given outcome.
func RecordReport(format, outcome string) {
	globalManager.reportsGenerated.WithLabelValues(format, outcome).Inc()
}

// RecordEventRows adds parsed and skipped input rows.
func RecordEventRows(parsed, skipped int) {
	globalManager.eventRowsParsed.Add(float64(parsed))
	globalManager.eventRowsSkipped.Add(float64(skipped))
}

// RecordParticipants adds merged and retained participant counts.
func RecordParticipants(merged, retained int) {
	globalManager.participantsMerged.Add(float64(merged))
	globalManager.participantsKept.Add(float64(retained))
}

// RecordStageLatency observes how long a pipeline stage took.
func RecordStageLatency(stage string, latencyMs float64) {
	globalManager.stageLatency.WithLabelValues(stage).Observe(latencyMs)
}

// RecordReportRows observes the size of a rendered report.
func RecordReportRows(rows int) {
	globalManager.reportRows.Observe(float64(rows))
}

// UpdateLastReport sets the timestamp of the last successful report.
func UpdateLastReport(unixSeconds int64) {
	globalManager.lastReportUnix.Set(float64(unixSeconds))
}

// Identity lookup.

// RecordLookupMisses adds names that had no identity record.
func RecordLookupMisses(n int) {
	globalManager.lookupMisses.Add(float64(n))
}

// RecordLookupError counts a failed identity lookup.
func RecordLookupError() {
	globalManager.lookupErrors.Inc()
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System.

// UpdateSystemMemoryUsage sets the allocated heap size in bytes.
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
