package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// unmatchedRoute labels requests that hit no registered route
const unmatchedRoute = "unmatched"

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route", "code"},
	)

	requestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "code"},
	)

	requestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
		[]string{"method", "route"},
	)

	responseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "Size of HTTP responses in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 5),
		},
		[]string{"method", "route"},
	)

	serverErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_errors_total",
			Help: "Total number of HTTP 5xx responses",
		},
		[]string{"method", "route", "code"},
	)
)

// PrometheusMiddleware records request metrics labelled by route template,
// so ids in the path do not create new series. Probe and scrape endpoints are skipped.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isInfrastructurePath(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		method := c.Request.Method
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		inFlight := requestsInFlight.WithLabelValues(method, route)
		inFlight.Inc()
		defer inFlight.Dec()

		c.Next()

		status := c.Writer.Status()
		code := strconv.Itoa(status)

		requestDuration.WithLabelValues(method, route, code).Observe(time.Since(start).Seconds())
		requestTotal.WithLabelValues(method, route, code).Inc()
		if size := c.Writer.Size(); size > 0 {
			responseSize.WithLabelValues(method, route).Observe(float64(size))
		}
		if status >= 500 {
			serverErrors.WithLabelValues(method, route, code).Inc()
		}
	}
}
