// Package metrics exposes Prometheus collectors for the HTTP surface and
// the grading service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Gradings        *prometheus.CounterVec
	GradeRatio      *prometheus.HistogramVec
	EvalDuration    *prometheus.HistogramVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		Gradings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autograde_gradings_total",
				Help: "Answers graded, by question mode and outcome",
			},
			[]string{"mode", "correct"},
		),
		GradeRatio: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "autograde_grade_ratio",
				Help:    "Awarded grade as a fraction of the maximum grade",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
			[]string{"mode"},
		),
		EvalDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "autograde_evaluation_duration_seconds",
				Help:    "Time spent evaluating one answer",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"mode"},
		),
	}
	m.registry.MustRegister(
		m.RequestCounter, m.RequestDuration,
		m.Gradings, m.GradeRatio, m.EvalDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry is where callers register extra collectors, such as database
// pool stats, so they are served by Handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveGrading records one evaluated answer.
func (m *Metrics) ObserveGrading(comprehension, correct bool, grade, maximum float64, took time.Duration) {
	mode := "plain"
	if comprehension {
		mode = "comprehension"
	}
	m.Gradings.WithLabelValues(mode, strconv.FormatBool(correct)).Inc()
	if maximum > 0 {
		m.GradeRatio.WithLabelValues(mode).Observe(grade / maximum)
	}
	m.EvalDuration.WithLabelValues(mode).Observe(took.Seconds())
}

// Middleware counts requests by chi route pattern, so path parameters do
// not explode the label set.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			endpoint = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RequestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
