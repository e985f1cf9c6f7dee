// Package metrics provides Prometheus metrics for the podclips service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultRefreshInterval = 10 * time.Second

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Votes
	votesApplied  *prometheus.CounterVec
	votesRejected *prometheus.CounterVec
	voteConflicts prometheus.Counter
	voteEvents    *prometheus.CounterVec

	// Catalogue
	clipsTotal    prometheus.Gauge
	featuredTotal prometheus.Gauge
	listRequests  *prometheus.CounterVec

	// Store
	storeLatency *prometheus.HistogramVec

	// Vote log
	voteLogRecorded prometheus.Counter
	voteLogErrors   prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueTotal  prometheus.Counter
	queueDequeueTotal  prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "podclips",
		subsystem:        "clips",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels, Buckets: buckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.votesApplied = auto.NewCounterVec(
		m.counterOpts("votes_applied_total", "Votes applied to clips by vote type"),
		[]string{"vote_type"},
	)
	m.votesRejected = auto.NewCounterVec(
		m.counterOpts("votes_rejected_total", "Votes rejected by reason"),
		[]string{"reason"},
	)
	m.voteConflicts = auto.NewCounter(
		m.counterOpts("vote_cas_conflicts_total", "Compare-and-swap retries caused by concurrent votes"),
	)
	m.voteEvents = auto.NewCounterVec(
		m.counterOpts("vote_events_total", "Vote events handed to the vote log by outcome"),
		[]string{"outcome"},
	)

	m.clipsTotal = auto.NewGauge(m.gaugeOpts("clips_total", "Number of clips in the store"))
	m.featuredTotal = auto.NewGauge(m.gaugeOpts("featured_clips_total", "Number of featured clips"))
	m.listRequests = auto.NewCounterVec(
		m.counterOpts("list_requests_total", "Clip listings by effective sort key"),
		[]string{"sort_by"},
	)

	m.storeLatency = auto.NewHistogramVec(
		m.histogramOpts("store_operation_latency_milliseconds", "Clip store operation latency in milliseconds", m.histogramBuckets),
		[]string{"operation"},
	)

	m.voteLogRecorded = auto.NewCounter(m.counterOpts("vote_log_recorded_total", "Vote events persisted by the vote log"))
	m.voteLogErrors = auto.NewCounter(m.counterOpts("vote_log_errors_total", "Vote events the vote log failed to persist"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Vote events waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Vote event queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue size divided by capacity"))
	m.queueEnqueueTotal = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Vote events enqueued"))
	m.queueDequeueTotal = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Vote events dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Vote events rejected by the queue"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Vote log workers running"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogramOpts("worker_processing_latency_milliseconds", "Time to record one vote event", m.histogramBuckets),
	)
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Vote log worker errors"))

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "HTTP errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "Average GC pause in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordVoteApplied counts a vote applied to a clip.
func RecordVoteApplied(voteType string) {
	globalManager.votesApplied.WithLabelValues(voteType).Inc()
}

// RecordVoteRejected counts a vote that left state unchanged.
func RecordVoteRejected(reason string) {
	globalManager.votesRejected.WithLabelValues(reason).Inc()
}

// RecordVoteConflict counts one compare-and-swap retry.
func RecordVoteConflict() {
	globalManager.voteConflicts.Inc()
}

// RecordVoteEvent counts what happened to a vote event: enqueued or dropped.
func RecordVoteEvent(outcome string) {
	globalManager.voteEvents.WithLabelValues(outcome).Inc()
}

// UpdateClipsTotal sets the number of clips.
func UpdateClipsTotal(count int) {
	globalManager.clipsTotal.Set(float64(count))
}

// UpdateFeaturedTotal sets the number of featured clips.
func UpdateFeaturedTotal(count int) {
	globalManager.featuredTotal.Set(float64(count))
}

// RecordListRequest counts a listing by its effective sort key.
func RecordListRequest(sortBy string) {
	globalManager.listRequests.WithLabelValues(sortBy).Inc()
}

// RecordStoreLatency observes a store operation latency.
func RecordStoreLatency(operation string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordVoteLogged counts a persisted vote event.
func RecordVoteLogged() {
	globalManager.voteLogRecorded.Inc()
}

// RecordVoteLogError counts a vote event the vote log failed to persist.
func RecordVoteLogError() {
	globalManager.voteLogErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueTotal.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueTotal.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records how long one event took to record.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap allocation in bytes.
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

// GetRegistry returns the registry every metric of this package lives on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
