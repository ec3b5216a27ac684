// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the taskgate gateway.
package observability

import "github.com/prometheus/client_golang/prometheus"

// GatewayBuckets defines histogram buckets for gateway latencies. The
// request path is two store round trips plus a handler, so buckets range
// from 1ms to 10s.
var GatewayBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskgate_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskgate_request_duration_seconds",
			Help:    "Request duration",
			Buckets: GatewayBuckets,
		},
		[]string{"method"},
	)

	// AuthFailuresTotal counts authentication rejections by internal reason.
	// The reason label never leaves the process in a response body.
	AuthFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskgate_auth_failures_total",
			Help: "Authentication failures",
		},
		[]string{"reason"},
	)

	// RateLimitRejectedTotal counts requests rejected by the rate limiter.
	RateLimitRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskgate_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
		[]string{"class"},
	)

	// StoreErrorsTotal counts failed round trips to backing stores.
	StoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskgate_store_errors_total",
			Help: "Backing store errors",
		},
		[]string{"store"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthFailuresTotal,
		RateLimitRejectedTotal,
		StoreErrorsTotal,
	)
}
