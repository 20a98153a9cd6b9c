// Package metrics provides Prometheus metrics for the WardWatch service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Persistence
	storeReads   *prometheus.CounterVec
	storeWrites  *prometheus.CounterVec
	storeCorrupt *prometheus.CounterVec
	storeLatency *prometheus.HistogramVec

	// Change notification bus
	busNotifications *prometheus.CounterVec
	busSubscribers   prometheus.Gauge

	// Derived collection gauges (recomputed by the refresher)
	collectionItems    *prometheus.GaugeVec
	openItems          *prometheus.GaugeVec
	overdueItems       *prometheus.GaugeVec
	expiringItems      *prometheus.GaugeVec
	trainingCompliance prometheus.Gauge

	// Refresher queue and worker
	refreshQueueSize prometheus.Gauge
	refreshDropped   prometheus.Counter
	refreshLatency   prometheus.Histogram
	refreshErrors    prometheus.Counter

	// Request outcomes
	idempotentReplays  prometheus.Counter
	validationFailures *prometheus.CounterVec
	unauthorized       *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "wardwatch",
		subsystem:        "compliance",
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

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
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

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
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

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.storeReads = m.counterVec("store_reads_total", "Collection reads by collection key", "collection")
	m.storeWrites = m.counterVec("store_writes_total", "Collection writes by collection key", "collection")
	m.storeCorrupt = m.counterVec("store_corrupt_total", "Collection payloads that failed to decode and were served as empty", "collection")
	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Key-value store operation latency in milliseconds", "op")

	m.busNotifications = m.counterVec("bus_notifications_total", "Change notifications published by topic", "topic")
	m.busSubscribers = m.gauge("bus_subscribers", "Current number of change bus subscribers")

	m.collectionItems = m.gaugeVec("collection_items", "Records per collection", "collection")
	m.openItems = m.gaugeVec("open_items", "Open work items per collection", "collection")
	m.overdueItems = m.gaugeVec("overdue_items", "Open items past their due date per collection", "collection")
	m.expiringItems = m.gaugeVec("expiring_items", "Items inside the module expiry window (expired included)", "collection")
	m.trainingCompliance = m.gauge("training_compliance_percent", "Training compliance for the current year")

	m.refreshQueueSize = m.gauge("refresh_queue_size", "Pending topics waiting for gauge recomputation")
	m.refreshDropped = m.counter("refresh_dropped_total", "Topics dropped because the refresh queue was full")
	m.refreshLatency = m.histogram("refresh_latency_milliseconds", "Gauge recomputation latency in milliseconds", m.histogramBuckets)
	m.refreshErrors = m.counter("refresh_errors_total", "Gauge recomputations that failed")

	m.idempotentReplays = m.counter("idempotent_replays_total", "Create requests rejected because their idempotency key was already used")
	m.validationFailures = m.counterVec("validation_failures_total", "Rejected submissions by operation", "operation")
	m.unauthorized = m.counterVec("unauthorized_total", "Actions refused for lack of role by operation", "operation")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Average GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordStoreRead counts a collection read.
func RecordStoreRead(collection string) {
	globalManager.storeReads.WithLabelValues(collection).Inc()
}

// RecordStoreWrite counts a collection write.
func RecordStoreWrite(collection string) {
	globalManager.storeWrites.WithLabelValues(collection).Inc()
}

// RecordStoreCorrupt counts a collection payload that failed to decode.
func RecordStoreCorrupt(collection string) {
	globalManager.storeCorrupt.WithLabelValues(collection).Inc()
}

// RecordStoreLatency records a KV operation latency ("get", "set", "keys").
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordBusNotification counts a published change notification.
func RecordBusNotification(topic string) {
	globalManager.busNotifications.WithLabelValues(topic).Inc()
}

// UpdateBusSubscribers sets the current subscriber count.
func UpdateBusSubscribers(count int) {
	globalManager.busSubscribers.Set(float64(count))
}

// UpdateCollectionItems sets the record count of a collection.
func UpdateCollectionItems(collection string, count int) {
	globalManager.collectionItems.WithLabelValues(collection).Set(float64(count))
}

// UpdateOpenItems sets the open work-item count of a collection.
func UpdateOpenItems(collection string, count int) {
	globalManager.openItems.WithLabelValues(collection).Set(float64(count))
}

// UpdateOverdueItems sets the overdue count of a collection.
func UpdateOverdueItems(collection string, count int) {
	globalManager.overdueItems.WithLabelValues(collection).Set(float64(count))
}

// UpdateExpiringItems sets the expiring count of a collection.
func UpdateExpiringItems(collection string, count int) {
	globalManager.expiringItems.WithLabelValues(collection).Set(float64(count))
}

// UpdateTrainingCompliance sets the yearly training compliance percentage.
func UpdateTrainingCompliance(percent int) {
	globalManager.trainingCompliance.Set(float64(percent))
}

// UpdateRefreshQueueSize sets the number of pending refresh topics.
func UpdateRefreshQueueSize(size int) {
	globalManager.refreshQueueSize.Set(float64(size))
}

// RecordRefreshDropped counts a topic dropped by a full refresh queue.
func RecordRefreshDropped() {
	globalManager.refreshDropped.Inc()
}

// RecordRefreshLatency records how long a gauge recomputation took.
func RecordRefreshLatency(latencyMs float64) {
	globalManager.refreshLatency.Observe(latencyMs)
}

// RecordRefreshError counts a failed recomputation.
func RecordRefreshError() {
	globalManager.refreshErrors.Inc()
}

// RecordIdempotentReplay counts a create request with a reused idempotency key.
func RecordIdempotentReplay() {
	globalManager.idempotentReplays.Inc()
}

// RecordValidationFailure counts a rejected submission.
func RecordValidationFailure(operation string) {
	globalManager.validationFailures.WithLabelValues(operation).Inc()
}

// RecordUnauthorized counts an action refused for lack of role.
func RecordUnauthorized(operation string) {
	globalManager.unauthorized.WithLabelValues(operation).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

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

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
