// Package metrics holds the Prometheus instruments exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Shelf build outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamhub_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "streamhub_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ShelfBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamhub_shelf_builds_total",
			Help: "Shelf builds by shelf name and outcome (ok, degraded)",
		},
		[]string{"shelf", "outcome"},
	)

	SyncClients = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "streamhub_sync_clients",
			Help: "Connected sync clients by transport",
		},
		[]string{"transport"},
	)
)

// RecordShelf counts one shelf build.
func RecordShelf(shelf string, degraded bool) {
	outcome := OutcomeOK
	if degraded {
		outcome = OutcomeDegraded
	}
	ShelfBuilds.WithLabelValues(shelf, outcome).Inc()
}

// GinMiddleware records request counts and latency keyed by the matched route
// pattern, so path parameters do not explode label cardinality.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
