// Package metrics provides Prometheus metrics for the shot chart service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingest Metrics - Shots moving through the pipeline
	shotsAccepted   prometheus.Counter
	shotsDuplicate  prometheus.Counter
	shotsProcessed  *prometheus.CounterVec
	shotsByZone     *prometheus.CounterVec
	classifyLatency prometheus.Histogram

	// Queue Metrics - Buffer between taps and workers
	queueCapacity prometheus.Gauge
	queueDepth    prometheus.Gauge
	queueEnqueues prometheus.Counter
	queueDequeues prometheus.Counter
	queueRejects  *prometheus.CounterVec

	// Worker Metrics - Classification stage performance
	workerActiveCount prometheus.Gauge
	workerThroughput  prometheus.Gauge
	workerErrors      *prometheus.CounterVec

	// Dedupe Metrics
	dedupeTracked prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Store Metrics - Persistence performance
	storeWriteLatency prometheus.Histogram
	storeQueryLatency prometheus.Histogram
	storeErrors       *prometheus.CounterVec
	storeShots        prometheus.Gauge

	// Live Feed Metrics - WebSocket fan-out
	liveSubscribers prometheus.Gauge
	liveBroadcasts  prometheus.Counter
	liveDrops       prometheus.Counter

	// Render Metrics - Chart and report generation
	chartsRendered *prometheus.CounterVec
	renderLatency  *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "shotchart",
		subsystem:        "recorder",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Ingest Metrics - Shots moving through the pipeline
	m.shotsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "shots_accepted_total",
		Help:      "Total number of shot events accepted for processing",
	})

	m.shotsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "shots_duplicate_total",
		Help:      "Total number of duplicate shot events detected (offline sync replays)",
	})

	m.shotsProcessed = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "shots_processed_total",
			Help:      "Total number of shots classified and stored, by type and result",
		},
		[]string{"shot_type", "made"},
	)

	m.shotsByZone = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "shots_by_zone_total",
			Help:      "Total number of shots classified per court zone",
		},
		[]string{"zone"},
	)

	m.classifyLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "classify_latency_milliseconds",
		Help:      "Histogram of classification stage latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Queue Metrics - Buffer between taps and workers
	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum queue capacity",
	})

	m.queueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_depth",
		Help:      "Current number of queued shot events (backlog indicator)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of shot events enqueued",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of shot events dequeued",
	})

	m.queueRejects = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "queue_rejects_total",
			Help:      "Total number of rejected enqueues by reason",
		},
		[]string{"reason"},
	)

	// Worker Metrics - Classification stage performance
	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of active classification workers",
	})

	m.workerThroughput = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_shots_per_second",
		Help:      "Average shots processed per second by workers",
	})

	m.workerErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "worker_errors_total",
			Help:      "Total number of worker errors by pipeline stage",
		},
		[]string{"stage"},
	)

	// Dedupe Metrics
	m.dedupeTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dedupe_tracked_ids",
		Help:      "Number of event ids currently tracked for deduplication",
	})

	// HTTP Performance Metrics - User experience indicators
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Store Metrics - Persistence performance
	m.storeWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_write_latency_milliseconds",
		Help:      "Store write operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_latency_milliseconds",
		Help:      "Store query operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "store_errors_total",
			Help:      "Total number of store errors by operation",
		},
		[]string{"op"},
	)

	m.storeShots = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_shots_total",
		Help:      "Total number of shots currently stored",
	})

	// Live Feed Metrics - WebSocket fan-out
	m.liveSubscribers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "live_subscribers",
		Help:      "Current number of live feed subscribers",
	})

	m.liveBroadcasts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "live_broadcasts_total",
		Help:      "Total number of shots broadcast to live subscribers",
	})

	m.liveDrops = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "live_dropped_total",
		Help:      "Total number of live messages dropped on slow subscribers",
	})

	// Render Metrics - Chart and report generation
	m.chartsRendered = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "charts_rendered_total",
			Help:      "Total number of rendered charts and reports by format",
		},
		[]string{"format"},
	)

	m.renderLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "render_latency_milliseconds",
			Help:      "Chart and report render latency in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"format"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// Ingest Metrics Functions.

// RecordShotAccepted increments the accepted shots counter.
func RecordShotAccepted() {
	globalManager.shotsAccepted.Inc()
}

// RecordShotDuplicate increments the duplicate shots counter.
func RecordShotDuplicate() {
	globalManager.shotsDuplicate.Inc()
}

// RecordShotProcessed counts a classified shot by type and result.
func RecordShotProcessed(shotType string, made bool) {
	result := "missed"
	if made {
		result = "made"
	}
	globalManager.shotsProcessed.WithLabelValues(shotType, result).Inc()
}

// RecordZoneShot counts a classified shot against its court zone.
func RecordZoneShot(zone string) {
	globalManager.shotsByZone.WithLabelValues(zone).Inc()
}

// RecordClassifyLatency records classification latency in milliseconds.
func RecordClassifyLatency(latencyMs float64) {
	globalManager.classifyLatency.Observe(latencyMs)
}

// Queue Metrics Functions.

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueDepth sets the current queue depth.
func UpdateQueueDepth(depth int) {
	globalManager.queueDepth.Set(float64(depth))
}

// RecordShotEnqueued increments the enqueue counter.
func RecordShotEnqueued() {
	globalManager.queueEnqueues.Inc()
}

// RecordShotDequeued increments the dequeue counter.
func RecordShotDequeued() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueReject counts a rejected enqueue by reason.
func RecordQueueReject(reason string) {
	globalManager.queueRejects.WithLabelValues(reason).Inc()
}

// Worker Metrics Functions.

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateWorkerThroughput sets the average shots processed per second.
func UpdateWorkerThroughput(rate float64) {
	globalManager.workerThroughput.Set(rate)
}

// RecordWorkerError counts a worker error against the failing stage.
func RecordWorkerError(stage string) {
	globalManager.workerErrors.WithLabelValues(stage).Inc()
}

// Dedupe Metrics Functions.

// UpdateDedupeSize sets the number of tracked event ids.
func UpdateDedupeSize(size int) {
	globalManager.dedupeTracked.Set(float64(size))
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Store Metrics Functions.

// RecordStoreWriteLatency records store write operation latency.
func RecordStoreWriteLatency(latencyMs float64) {
	globalManager.storeWriteLatency.Observe(latencyMs)
}

// RecordStoreQueryLatency records store query operation latency.
func RecordStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryLatency.Observe(latencyMs)
}

// RecordStoreError counts a store error against the operation name.
func RecordStoreError(op string) {
	globalManager.storeErrors.WithLabelValues(op).Inc()
}

// UpdateStoreShotCount sets the number of stored shots.
func UpdateStoreShotCount(count int) {
	globalManager.storeShots.Set(float64(count))
}

// Live Feed Metrics Functions.

// UpdateLiveSubscribers sets the current live subscriber count.
func UpdateLiveSubscribers(count int) {
	globalManager.liveSubscribers.Set(float64(count))
}

// RecordLiveBroadcast increments the live broadcast counter.
func RecordLiveBroadcast() {
	globalManager.liveBroadcasts.Inc()
}

// RecordLiveDrop increments the dropped live message counter.
func RecordLiveDrop() {
	globalManager.liveDrops.Inc()
}

// Render Metrics Functions.

// RecordChartRendered counts a rendered chart or report by format.
func RecordChartRendered(format string) {
	globalManager.chartsRendered.WithLabelValues(format).Inc()
}

// RecordRenderLatency records render latency for a format in milliseconds.
func RecordRenderLatency(format string, latencyMs float64) {
	globalManager.renderLatency.WithLabelValues(format).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
