package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation. A nil
// *MetricsService is valid and records nothing.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	delegateLatency *prometheus.HistogramVec
	searchResults   prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
	deliveryErrors  prometheus.Counter
}

// NewMetricsService registers the bot's collectors on a private registry.
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

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dialogue_transitions_total",
		Help: "Handled chat messages by dialogue branch",
	}, []string{"branch"})

	delegateLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "delegate_call_duration_seconds",
		Help:    "Latency of calls to external text services",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32},
	}, []string{"delegate", "outcome"})

	searchResults := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "search_result_count",
		Help:    "Number of resources returned per search",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "document_text_cache_lookups_total",
		Help: "Document text cache lookups by result",
	}, []string{"result"})

	deliveryErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbound_delivery_errors_total",
		Help: "Replies that could not be handed to the transport",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, transitions, delegateLatency, searchResults, cacheLookups, deliveryErrors, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		transitions:     transitions,
		delegateLatency: delegateLatency,
		searchResults:   searchResults,
		cacheLookups:    cacheLookups,
		deliveryErrors:  deliveryErrors,
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

// Registry exposes the registry for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordTransition counts one handled message per dialogue branch.
func (m *MetricsService) RecordTransition(branch string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(branch).Inc()
}

// ObserveDelegate records the latency and outcome of an external call.
func (m *MetricsService) ObserveDelegate(delegate string, ok bool, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.delegateLatency.WithLabelValues(delegate, outcome).Observe(duration.Seconds())
}

// ObserveSearch records how many resources a search returned.
func (m *MetricsService) ObserveSearch(count int) {
	if m == nil {
		return
	}
	m.searchResults.Observe(float64(count))
}

// RecordCacheLookup counts document text cache hits and misses.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RecordDeliveryError counts replies the messenger refused.
func (m *MetricsService) RecordDeliveryError() {
	if m == nil {
		return
	}
	m.deliveryErrors.Inc()
}
