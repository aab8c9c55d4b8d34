package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_http_requests_total",
			Help: "Total number of report HTTP requests",
		},
		[]string{"route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reports_http_request_duration_seconds",
			Help:    "Duration of report HTTP requests",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"route"},
	)

	rateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reports_rate_limited_total",
			Help: "Total number of report requests rejected by the rate limiter",
		},
	)
)

// Metrics records a request count and latency per matched route.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		rt := route(r)
		httpRequestDuration.WithLabelValues(rt).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(rt, strconv.Itoa(rec.status)).Inc()
	})
}
