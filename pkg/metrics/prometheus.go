// Package metrics provides Prometheus metrics for the race-time
// leaderboard store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the tracker.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Submission outcomes
	submissionsAccepted *prometheus.CounterVec
	submissionsRejected *prometheus.CounterVec

	// Registration and rollover lifecycle
	registeredUsers prometheus.Gauge
	rollovers       prometheus.Counter

	// Archive activity
	archiveWrites prometheus.Counter
	archiveLoads  prometheus.Counter
	archiveMisses prometheus.Counter

	// Storage performance
	storageWriteLatency prometheus.Histogram

	// Leaderboard reads
	leaderboardQueries prometheus.Counter

	// HTTP surface
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
		namespace:        "pkw",
		subsystem:        "tracker",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.submissionsAccepted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_accepted_total",
		Help:      "Times accepted as a new personal best, by course",
	}, []string{"course"})

	m.submissionsRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_rejected_total",
		Help:      "Submissions rejected before any state change, by reason",
	}, []string{"reason"})

	m.registeredUsers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "registered_users",
		Help:      "Current number of users opted in to leaderboard displays",
	})

	m.rollovers = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rollovers_total",
		Help:      "Calendar-month rollovers performed",
	})

	m.archiveWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_writes_total",
		Help:      "Archive snapshot writes, including live mirror updates",
	})

	m.archiveLoads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_loads_total",
		Help:      "Archived periods successfully loaded",
	})

	m.archiveMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_misses_total",
		Help:      "Archive lookups for periods with no recorded activity",
	})

	m.storageWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "storage_write_latency_milliseconds",
		Help:      "Histogram of durable database write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.leaderboardQueries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_queries_total",
		Help:      "Leaderboard views built, live and archived",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})
}

// GetRegistry returns the registry metrics are collected in, for
// serving via promhttp.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RecordSubmissionAccepted counts an accepted personal best.
func RecordSubmissionAccepted(course string) {
	if globalManager.enabled {
		globalManager.submissionsAccepted.WithLabelValues(course).Inc()
	}
}

// RecordSubmissionRejected counts a rejected submission.
func RecordSubmissionRejected(reason string) {
	if globalManager.enabled {
		globalManager.submissionsRejected.WithLabelValues(reason).Inc()
	}
}

// UpdateRegisteredUsers sets the current registrant count.
func UpdateRegisteredUsers(count int) {
	if globalManager.enabled {
		globalManager.registeredUsers.Set(float64(count))
	}
}

// RecordRollover counts a month rollover.
func RecordRollover() {
	if globalManager.enabled {
		globalManager.rollovers.Inc()
	}
}

// RecordArchiveWrite counts an archive snapshot write.
func RecordArchiveWrite() {
	if globalManager.enabled {
		globalManager.archiveWrites.Inc()
	}
}

// RecordArchiveLoad counts a successful archive read.
func RecordArchiveLoad() {
	if globalManager.enabled {
		globalManager.archiveLoads.Inc()
	}
}

// RecordArchiveMiss counts an archive lookup with no data.
func RecordArchiveMiss() {
	if globalManager.enabled {
		globalManager.archiveMisses.Inc()
	}
}

// RecordStorageWrite observes one durable write's latency.
func RecordStorageWrite(durationMs float64) {
	if globalManager.enabled {
		globalManager.storageWriteLatency.Observe(durationMs)
	}
}

// RecordLeaderboardQuery counts a leaderboard view build.
func RecordLeaderboardQuery() {
	if globalManager.enabled {
		globalManager.leaderboardQueries.Inc()
	}
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
	}
}

// RecordHTTPRequestDuration observes one HTTP request's duration.
func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
	}
}
