// Package metrics exposes Prometheus collectors for backend calls and manual triggers.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "alertconsole"

type Metrics struct {
	registry *prometheus.Registry

	gatewayRequests *prometheus.CounterVec
	gatewayLatency  *prometheus.HistogramVec
	triggerResults  *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
}

// New builds a Metrics with its own registry so tests can create as many as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		gatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Calls forwarded to the backend API, by method and status.",
		}, []string{"method", "status"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Latency of calls forwarded to the backend API.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		triggerResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trigger",
			Name:      "results_total",
			Help:      "Manual trigger outcomes per endpoint.",
		}, []string{"endpoint", "success"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Inbound requests served, by method and status.",
		}, []string{"method", "status"}),
	}

	reg.MustRegister(
		m.gatewayRequests,
		m.gatewayLatency,
		m.triggerResults,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveGateway records one backend call. status is 0 for transport failures.
func (m *Metrics) ObserveGateway(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.gatewayRequests.WithLabelValues(method, label).Inc()
	m.gatewayLatency.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveTrigger(endpoint string, success bool) {
	if m == nil {
		return
	}
	m.triggerResults.WithLabelValues(endpoint, strconv.FormatBool(success)).Inc()
}

func (m *Metrics) ObserveHTTP(method string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
