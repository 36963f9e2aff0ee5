// Package metrics exposes Prometheus collectors for the HTTP surface and the
// assistant pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shopping_assistant"

// Metrics owns a private registry so tests can create as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	decodeOutcomes *prometheus.CounterVec
	modelCalls     *prometheus.HistogramVec
}

// New creates and registers all collectors, plus the Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"route", "method"}),
		decodeOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_outcomes_total",
			Help:      "Model response decode results by endpoint and outcome (accept, fallback, reject).",
		}, []string{"endpoint", "outcome"}),
		modelCalls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_duration_seconds",
			Help:      "Model backend call latency by endpoint and result.",
			Buckets:   []float64{.25, .5, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"endpoint", "result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.decodeOutcomes,
		m.modelCalls,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTP records one finished HTTP request.
func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// RecordOutcome counts one decoder result for an endpoint.
func (m *Metrics) RecordOutcome(endpoint, outcome string) {
	m.decodeOutcomes.WithLabelValues(endpoint, outcome).Inc()
}

// ObserveModelCall records the latency of one backend call.
func (m *Metrics) ObserveModelCall(endpoint string, err error, d time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.modelCalls.WithLabelValues(endpoint, result).Observe(d.Seconds())
}
