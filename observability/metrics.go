// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the yelpcamp server.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestsTotal counts all HTTP requests by method, route pattern and status code.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yelpcamp_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yelpcamp_request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// PipelineOutcomesTotal counts how request pipelines ended:
	// respond, fail, unanswered (no stage produced a response) or panic.
	PipelineOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yelpcamp_pipeline_outcomes_total",
			Help: "Pipeline terminal outcomes",
		},
		[]string{"outcome"},
	)

	// StoreOperationDuration records document store latency per collection and operation.
	StoreOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yelpcamp_store_operation_duration_seconds",
			Help:    "Document store operation latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"collection", "operation"},
	)

	// StoreErrorsTotal counts failed document store operations.
	StoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yelpcamp_store_errors_total",
			Help: "Document store errors",
		},
		[]string{"collection", "operation"},
	)

	// SessionsSweptTotal counts expired sessions removed by the background sweeper.
	SessionsSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "yelpcamp_sessions_swept_total",
			Help: "Expired sessions removed",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		PipelineOutcomesTotal,
		StoreOperationDuration,
		StoreErrorsTotal,
		SessionsSweptTotal,
	)
}

// ObserveStore records one document store call. Use it with defer:
//
//	defer observability.ObserveStore("campgrounds", "find", time.Now(), &err)
func ObserveStore(collection, operation string, start time.Time, errp *error) {
	StoreOperationDuration.WithLabelValues(collection, operation).Observe(time.Since(start).Seconds())
	if errp != nil && *errp != nil {
		StoreErrorsTotal.WithLabelValues(collection, operation).Inc()
	}
}

// Middleware records request counts and latencies labeled by chi route pattern,
// so /campgrounds/{id} is one series rather than one per id.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
