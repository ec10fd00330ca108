// Package metrics holds the Prometheus instruments shared by the blog.
// All collectors are registered with the default registry and exposed on
// /metrics by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ListingRequests counts composed post listings by surface and response mode.
	ListingRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_listing_requests_total",
			Help: "Number of post listings composed, by surface and response mode.",
		}, []string{"surface", "mode"})

	// ImageHostOperations counts calls to the image host by operation and result.
	ImageHostOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_image_host_operations_total",
			Help: "Number of image host calls, by operation and result.",
		}, []string{"operation", "result"})

	// LoginAttempts counts admin login attempts by result.
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_admin_login_attempts_total",
			Help: "Number of admin login attempts, by result.",
		}, []string{"result"})

	// RequestDuration tracks HTTP handler latency.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blog_http_request_duration_seconds",
			Help:    "HTTP request latency, by method, route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(
		ListingRequests,
		ImageHostOperations,
		LoginAttempts,
		RequestDuration,
	)
}
