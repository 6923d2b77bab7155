package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the snapshot pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	snapshotsPublished  prometheus.Counter
	snapshotsSuperseded prometheus.Counter
	enrichmentFailures  prometheus.Counter
	streamClients       prometheus.Gauge

	cacheLatency prometheus.Observer
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	snapshotsPublished := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "claim_snapshots_published_total",
		Help: "Snapshot batches published to live query sinks",
	})

	snapshotsSuperseded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "claim_snapshots_superseded_total",
		Help: "Snapshot batches discarded because a newer generation arrived",
	})

	enrichmentFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "claim_enrichment_failures_total",
		Help: "Per-record enrichment lookups that degraded to defaults",
	})

	streamClients := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "claim_stream_clients",
		Help: "Connected live stream clients",
	})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "resolver_cache_latency_seconds",
		Help:    "Latency for resolver cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resolver_cache_hits_total",
		Help: "Resolver lookups served from cache or a shared in-flight fetch",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resolver_cache_misses_total",
		Help: "Resolver lookups that issued an underlying fetch",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		requestDuration, requestTotal,
		snapshotsPublished, snapshotsSuperseded, enrichmentFailures, streamClients,
		cacheLatency, cacheHits, cacheMisses,
		goroutines,
	)

	return &MetricsService{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		snapshotsPublished:  snapshotsPublished,
		snapshotsSuperseded: snapshotsSuperseded,
		enrichmentFailures:  enrichmentFailures,
		streamClients:       streamClients,
		cacheLatency:        cacheLatency,
		cacheHits:           cacheHits,
		cacheMisses:         cacheMisses,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// SnapshotPublished implements LiveMetricsRecorder.
func (m *MetricsService) SnapshotPublished() {
	if m == nil {
		return
	}
	m.snapshotsPublished.Inc()
}

// SnapshotSuperseded implements LiveMetricsRecorder.
func (m *MetricsService) SnapshotSuperseded() {
	if m == nil {
		return
	}
	m.snapshotsSuperseded.Inc()
}

// EnrichmentFailure implements EnrichmentMetricsRecorder.
func (m *MetricsService) EnrichmentFailure() {
	if m == nil {
		return
	}
	m.enrichmentFailures.Inc()
}

// StreamClientConnected tracks a new live stream consumer.
func (m *MetricsService) StreamClientConnected() {
	if m == nil {
		return
	}
	m.streamClients.Inc()
}

// StreamClientDisconnected tracks a departed live stream consumer.
func (m *MetricsService) StreamClientDisconnected() {
	if m == nil {
		return
	}
	m.streamClients.Dec()
}

// RecordCacheOperation implements CacheMetricsRecorder for the resolvers.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}
