// Package metrics exposes Prometheus counters for authorization decisions,
// notifications, directory refreshes and HTTP traffic.
//
// All methods are safe on a nil *Metrics, so tests and tools can skip
// instrumentation entirely.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/hidapi/internal/app/policy/decision"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registered collectors.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DecisionsTotal     *prometheus.CounterVec
	DroppedFieldsTotal *prometheus.CounterVec
	EffectsTotal       *prometheus.CounterVec

	NotificationsTotal *prometheus.CounterVec

	DirectoryRefreshTotal *prometheus.CounterVec
	DirectoryOperations   prometheus.Gauge
}

// New creates and registers all collectors on registry. A nil registry gets
// a fresh one.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hidapi_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hidapi_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		DecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hidapi_authz_decisions_total",
				Help: "Authorization decisions by resource kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		DroppedFieldsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hidapi_authz_dropped_fields_total",
				Help: "Requested fields silently dropped by authorization",
			},
			[]string{"kind", "field"},
		),
		EffectsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hidapi_authz_effects_total",
				Help: "Privileged effects produced by authorization",
			},
			[]string{"effect"},
		),
		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hidapi_notifications_total",
				Help: "Notification deliveries by template and status",
			},
			[]string{"template", "status"},
		),
		DirectoryRefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hidapi_directory_refresh_total",
				Help: "Operations cache refreshes by status",
			},
			[]string{"status"},
		),
		DirectoryOperations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "hidapi_directory_operations",
				Help: "Operations returned by the last successful refresh",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DecisionsTotal,
		m.DroppedFieldsTotal,
		m.EffectsTotal,
		m.NotificationsTotal,
		m.DirectoryRefreshTotal,
		m.DirectoryOperations,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveDecision counts one authorization decision.
func (m *Metrics) ObserveDecision(d decision.Decision, kind string) {
	if m == nil {
		return
	}
	outcome := "allowed"
	switch {
	case d.Rejected:
		outcome = "rejected"
	case len(d.Dropped) > 0:
		outcome = "partial"
	}
	m.DecisionsTotal.WithLabelValues(kind, outcome).Inc()
	for _, f := range d.Dropped {
		m.DroppedFieldsTotal.WithLabelValues(kind, fieldLabel(f)).Inc()
	}
	for _, e := range d.Effects {
		m.EffectsTotal.WithLabelValues(string(e)).Inc()
	}
}

// fieldLabel folds per-role drops ("roles:+admin") into "roles" to keep
// label cardinality bounded.
func fieldLabel(f string) string {
	name, _, _ := strings.Cut(f, ":")
	return name
}

// ObserveNotification counts one sink delivery.
func (m *Metrics) ObserveNotification(template string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.NotificationsTotal.WithLabelValues(template, status).Inc()
}

// ObserveRefresh records a directory refresh result.
func (m *Metrics) ObserveRefresh(count int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.DirectoryRefreshTotal.WithLabelValues("error").Inc()
		return
	}
	m.DirectoryRefreshTotal.WithLabelValues("ok").Inc()
	m.DirectoryOperations.Set(float64(count))
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware instruments requests, labeled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
