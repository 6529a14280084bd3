package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docqa_requests_total",
			Help: "Requests handled, by handler and HTTP status.",
		}, []string{"handler", "status"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docqa_llm_duration_seconds",
			Help:    "LLM call duration, by operation.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"operation"}),
	}
	registry.MustRegister(m.requests, m.llmDuration)
	return m
}

type Metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	llmDuration *prometheus.HistogramVec
}

func (m *Metrics) Request(handler string, status int) {
	m.requests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
}

// ObserveLLM records the duration of one LLM call, measured from start.
func (m *Metrics) ObserveLLM(operation string, start time.Time) {
	m.llmDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Wrap counts each request handled by next under the given handler name.
func (m *Metrics) Wrap(handler string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.Request(handler, sw.status)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
