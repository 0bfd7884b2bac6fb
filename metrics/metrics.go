// Package metrics holds the Prometheus collectors for the API and the advisor.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ToolCalls           *prometheus.CounterVec
	Tokens              *prometheus.CounterVec

	registry *prometheus.Registry
}

// New registers every collector on a private registry, so tests can build
// as many instances as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	register := func(c prometheus.Collector) { reg.MustRegister(c) }

	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Latency of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		ToolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_tool_calls_total",
				Help: "Advisor tool invocations by tool and outcome.",
			},
			[]string{"tool", "status"},
		),
		Tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_tokens_total",
				Help: "Gemini tokens consumed, by kind (input, output, total).",
			},
			[]string{"kind"},
		),
		registry: reg,
	}
	register(m.HTTPRequests)
	register(m.HTTPRequestDuration)
	register(m.ToolCalls)
	register(m.Tokens)
	register(collectors.NewGoCollector())
	register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

// RecordToolCall counts one tool execution. status is "ok" or "error".
func (m *Metrics) RecordToolCall(tool, status string) {
	if m == nil {
		return
	}
	m.ToolCalls.WithLabelValues(tool, status).Inc()
}

// RecordTokens adds the usage of one advisor request, summed over all its model rounds.
func (m *Metrics) RecordTokens(input, output, total int64) {
	if m == nil {
		return
	}
	m.Tokens.WithLabelValues("input").Add(float64(input))
	m.Tokens.WithLabelValues("output").Add(float64(output))
	m.Tokens.WithLabelValues("total").Add(float64(total))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
