package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	doubtEventsTotal      *prometheus.CounterVec
	doubtsByStatus        *prometheus.GaugeVec
	tutorCacheTotal       *prometheus.CounterVec
	notificationsTotal    *prometheus.CounterVec
	rateLimitedTotal      *prometheus.CounterVec
	realtimeClientsActive prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors shared by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nexus_api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nexus_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nexus_api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		doubtEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nexus_doubt_events_total",
			Help: "Doubt lifecycle events by outcome.",
		}, []string{"event"})

		doubtsByStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "nexus_doubts",
			Help: "Number of stored doubts by status.",
		}, []string{"status"})

		tutorCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nexus_tutor_cache_total",
			Help: "Tutor explanation cache lookups by result.",
		}, []string{"result"})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nexus_notifications_published_total",
			Help: "Notifications published by type.",
		}, []string{"type"})

		rateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nexus_rate_limited_total",
			Help: "Requests rejected by a rate limiter, by scope.",
		}, []string{"scope"})

		realtimeClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nexus_realtime_clients",
			Help: "Connected notification stream clients.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			doubtEventsTotal,
			doubtsByStatus,
			tutorCacheTotal,
			notificationsTotal,
			rateLimitedTotal,
			realtimeClientsActive,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// DoubtEvents counts created, resolved and conflicting resolutions.
func DoubtEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return doubtEventsTotal
}

// DoubtsByStatus is refreshed periodically by the stats job.
func DoubtsByStatus() *prometheus.GaugeVec {
	RegisterMetrics()
	return doubtsByStatus
}

// TutorCache counts tutor cache hits and misses.
func TutorCache() *prometheus.CounterVec {
	RegisterMetrics()
	return tutorCacheTotal
}

// NotificationsPublished counts published notifications.
func NotificationsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// RateLimited counts requests turned away by RateLimit.
func RateLimited() *prometheus.CounterVec {
	RegisterMetrics()
	return rateLimitedTotal
}

// RealtimeClients tracks connected websocket clients.
func RealtimeClients() prometheus.Gauge {
	RegisterMetrics()
	return realtimeClientsActive
}
