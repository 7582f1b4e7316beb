package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Custom histogram buckets optimized for API response times ranging from milliseconds to 30+ seconds
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Business Metrics
	//
	// LeadSubmissions status labels: success, validation_failed, honeypot,
	// rate_limited, parse_error, internal_error.
	LeadSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trimwise_lead_submissions_total",
			Help: "Total number of lead form submissions by outcome",
		},
		[]string{"status"},
	)

	LeadAttachments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trimwise_lead_attachments_total",
			Help: "Total number of bill attachments by outcome",
		},
		[]string{"status"},
	)

	// Relay Metrics
	RelayDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trimwise_relay_deliveries_total",
			Help: "Total number of downstream relay delivery attempts",
		},
		[]string{"relay", "status"},
	)

	RelayDeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trimwise_relay_delivery_duration_seconds",
			Help:    "Downstream relay delivery duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"relay", "status"},
	)

	// Storage Client Metrics
	StorageRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_client_operation_duration_seconds",
			Help:    "Storage client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	StorageRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_client_operation_total",
			Help: "Total number of storage client operations",
		},
		[]string{"operation", "status"},
	)

	// Rate Limiting Metrics
	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trimwise_rate_limit_rejections_total",
			Help: "Total number of requests rejected by rate limiting",
		},
		[]string{"limiter"},
	)
)

// MeasureDuration returns the elapsed seconds since start
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
