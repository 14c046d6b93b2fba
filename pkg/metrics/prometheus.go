// Package metrics provides Prometheus metrics for the squad service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultNamespace = "squad"
	defaultSubsystem = "roster"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Core: balancing and simulation
	balances        prometheus.Counter
	balanceFailures *prometheus.CounterVec
	simulations     *prometheus.CounterVec
	overallRatings  prometheus.Histogram

	// Roster
	rosterSize       prometheus.Gauge
	teamCount        prometheus.Gauge
	ratingsProcessed prometheus.Counter
	ratingsDuplicate prometheus.Counter
	ratingsRejected  prometheus.Counter

	// Queue and workers
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueEnqueued           prometheus.Counter
	queueEnqueueErrors      *prometheus.CounterVec
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Storage
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec
	cacheResults *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // private registry keeps Go runtime collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure rebuilds the package-level collectors on a fresh registry with
// opts applied. Call it once at startup before anything is recorded; values
// recorded earlier are discarded.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append(opts[:len(opts):len(opts)], WithPrometheusRegistry(registry))...)
	customRegistry = registry
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        defaultNamespace,
		subsystem:        defaultSubsystem,
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// Enabled reports whether recording is switched on.
func (m *Manager) Enabled() bool { return m.enabled }

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.balances = m.counter("balances_total", "Team balancing requests that produced two teams")
	m.balanceFailures = m.counterVec("balance_failures_total", "Team balancing requests rejected by validation", "reason")
	m.simulations = m.counterVec("simulations_total", "Match simulations by winning side", "winner")
	m.overallRatings = m.histogram("player_overall_rating", "Overall rating of players when ratings are applied",
		[]float64{1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5})

	m.rosterSize = m.gauge("players", "Players currently on the roster")
	m.teamCount = m.gauge("teams", "Saved teams")
	m.ratingsProcessed = m.counter("ratings_processed_total", "Rating submissions applied to the roster")
	m.ratingsDuplicate = m.counter("ratings_duplicate_total", "Rating submissions dropped as duplicates")
	m.ratingsRejected = m.counter("ratings_rejected_total", "Rating submissions that could not be applied")

	m.queueSize = m.gauge("queue_size", "Rating submissions waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Configured rating queue capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Rating submissions accepted by the queue")
	m.queueEnqueueErrors = m.counterVec("queue_enqueue_errors_total", "Rating submissions refused by the queue", "reason")
	m.workerCount = m.gauge("worker_count", "Rating workers running")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Time spent applying one rating submission", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Rating submissions that failed in a worker")

	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Store operation latency", "op")
	m.storeErrors = m.counterVec("store_errors_total", "Store operation failures", "op")
	m.cacheResults = m.counterVec("cache_requests_total", "Roster cache lookups by result", "result")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration",
		"endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and kind", "component", "kind")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
}

// RecordBalance counts a successful balance.
func RecordBalance() {
	if globalManager.enabled {
		globalManager.balances.Inc()
	}
}

// RecordBalanceFailure counts a rejected balance request.
func RecordBalanceFailure(reason string) {
	if globalManager.enabled {
		globalManager.balanceFailures.WithLabelValues(reason).Inc()
	}
}

// RecordSimulation counts a simulation by its winning side.
func RecordSimulation(winner string) {
	if globalManager.enabled {
		globalManager.simulations.WithLabelValues(winner).Inc()
	}
}

// ObservePlayerRating records an overall rating.
func ObservePlayerRating(overall float64) {
	if globalManager.enabled {
		globalManager.overallRatings.Observe(overall)
	}
}

func UpdateRosterSize(n int) { globalManager.rosterSize.Set(float64(n)) }
func UpdateTeamCount(n int)  { globalManager.teamCount.Set(float64(n)) }

func RecordRatingProcessed() { globalManager.ratingsProcessed.Inc() }
func RecordRatingDuplicate() { globalManager.ratingsDuplicate.Inc() }
func RecordRatingRejected()  { globalManager.ratingsRejected.Inc() }

func UpdateQueueSize(size int)         { globalManager.queueSize.Set(float64(size)) }
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }
func RecordQueueEnqueue()              { globalManager.queueEnqueued.Inc() }

// RecordQueueEnqueueError counts a refused enqueue, e.g. "full" or "closed".
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordStoreLatency observes the latency of a store operation.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

func RecordStoreError(op string) { globalManager.storeErrors.WithLabelValues(op).Inc() }

func RecordCacheHit()  { globalManager.cacheResults.WithLabelValues("hit").Inc() }
func RecordCacheMiss() { globalManager.cacheResults.WithLabelValues("miss").Inc() }

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

func RecordErrorByComponent(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// GetRegistry returns the registry backing the package-level recorders.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
