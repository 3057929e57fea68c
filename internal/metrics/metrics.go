// Package metrics defines the Prometheus metrics for the dashboard service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the namespace for all dashboard metrics.
	Namespace = "northcloud"

	// Subsystem is the subsystem for dashboard metrics.
	Subsystem = "dashboard"
)

// Metrics holds all Prometheus metrics for the dashboard.
type Metrics struct {
	// Polling metrics
	PollCyclesTotal   *prometheus.CounterVec
	PollSkippedTotal  prometheus.Counter
	StaleDroppedTotal prometheus.Counter
	FetchDurationSecs prometheus.Histogram
	JobsDisplayed     prometheus.Gauge

	// Action metrics
	ActionsTotal *prometheus.CounterVec

	// Upstream metrics
	UpstreamErrorsTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPDurationSeconds *prometheus.HistogramVec
}

// New creates and registers all dashboard metrics. A nil registerer uses
// the default one.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		PollCyclesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "poll_cycles_total",
			Help:      "Job list fetches by outcome.",
		}, []string{"outcome"}),

		PollSkippedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "poll_ticks_skipped_total",
			Help:      "Poll ticks skipped because a fetch was still in flight.",
		}),

		StaleDroppedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "stale_responses_dropped_total",
			Help:      "Fetch completions discarded because a newer fetch already resolved.",
		}),

		FetchDurationSecs: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "fetch_duration_seconds",
			Help:      "Backend job list fetch latency.",
			Buckets:   prometheus.DefBuckets,
		}),

		JobsDisplayed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "jobs_displayed",
			Help:      "Jobs in the most recently applied snapshot.",
		}),

		ActionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "actions_total",
			Help:      "Cancel/retry dispatches by action and outcome.",
		}, []string{"action", "outcome"}),

		UpstreamErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "upstream_errors_total",
			Help:      "Backend errors by classification.",
		}, []string{"kind"}),

		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),

		HTTPDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// GinMiddleware records request count and latency per route. Uses the
// route template, not the raw path, to keep cardinality bounded.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDurationSeconds.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
