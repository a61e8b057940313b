package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ozsensors/bom-bridge/internal/overload"
)

var (
	registry *prometheus.Registry

	// HTTP request rate on the read surface. Watch for: sudden drops (service down) or spikes.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation during shutdown drain.
	HTTPRequestsInFlight prometheus.Gauge

	// Bureau API call rate by endpoint. Watch for: error vs success ratio per endpoint.
	BureauAPICallsTotal *prometheus.CounterVec

	// Bureau API latency per request. Watch for: p95 > 2s (upstream degradation).
	BureauAPIDuration *prometheus.HistogramVec

	// Bureau API errors by category (timeout, network, upstream_5xx, parsing).
	BureauAPIErrorsTotal *prometheus.CounterVec

	// Retry attempts per endpoint. Watch for: high retries = flaky connectivity to the bureau.
	BureauAPIRetriesTotal *prometheus.CounterVec

	// Stale cache serves per endpoint. Any sustained rate means the bureau is unreachable.
	StaleCacheServesTotal *prometheus.CounterVec

	// Age of cached payloads when served stale. Watch for: growth toward a day old.
	StaleCacheAgeSeconds prometheus.Histogram

	// Collector update cycles by result (ok = every endpoint refreshed this cycle).
	CollectorCyclesTotal *prometheus.CounterVec

	// Full update cycle duration, including retry backoff sleeps.
	CollectorCycleDuration prometheus.Histogram

	// Rate limit denials on the read surface. Watch for: misbehaving consumers.
	RateLimitDeniedTotal prometheus.Counter

	rateLimitGaugesOnce sync.Once
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	BureauAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bureauApiCallsTotal",
			Help: "Total number of bureau API calls",
		},
		[]string{"endpoint", "status"},
	)
	BureauAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bureauApiDurationSeconds",
			Help:    "Bureau API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint", "status"},
	)
	BureauAPIErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bureauApiErrorsTotal",
			Help: "Bureau API errors by category",
		},
		[]string{"endpoint", "category"},
	)
	BureauAPIRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bureauApiRetriesTotal",
			Help: "Total number of retry attempts for bureau API calls",
		},
		[]string{"endpoint"},
	)
	StaleCacheServesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staleCacheServesTotal",
			Help: "Snapshots served from the last-known-good cache after retry exhaustion",
		},
		[]string{"endpoint"},
	)
	StaleCacheAgeSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "staleCacheAgeSeconds",
			Help:    "Age of cached payloads when served stale",
			Buckets: []float64{60, 300, 900, 1800, 3600, 7200, 21600, 86400},
		},
	)
	CollectorCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collectorCyclesTotal",
			Help: "Collector update cycles by result",
		},
		[]string{"result"},
	)
	CollectorCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "collectorCycleDurationSeconds",
			Help:    "Full update cycle duration including retry backoff",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		BureauAPICallsTotal, BureauAPIDuration, BureauAPIErrorsTotal, BureauAPIRetriesTotal,
		StaleCacheServesTotal, StaleCacheAgeSeconds,
		CollectorCyclesTotal, CollectorCycleDuration,
		RateLimitDeniedTotal,
	)
}

// RegisterRateLimitGauges registers load and rejects gauges for the rate-limited path.
// Call from main after config load with cfg.OverloadWindow.
func RegisterRateLimitGauges(window time.Duration) {
	rateLimitGaugesOnce.Do(func() {
		registry.MustRegister(
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "rateLimitRequestsInWindow",
					Help: "Requests hitting rate-limited path in sliding window; load/capacity planning",
				},
				func() float64 { return float64(overload.RequestCount(window)) },
			),
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "rateLimitRejectsInWindow",
					Help: "429 responses in sliding window; are we rejecting requests",
				},
				func() float64 { return float64(overload.DenialCount(window)) },
			),
		)
	})
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
