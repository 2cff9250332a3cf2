package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/hidapi/internal/app/policy/decision"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func value(t *testing.T, c prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	if err := c.Write(&out); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	switch {
	case out.Counter != nil:
		return out.Counter.GetValue()
	case out.Gauge != nil:
		return out.Gauge.GetValue()
	}
	return 0
}

func TestObserveDecision(t *testing.T) {
	m := New(nil)

	m.ObserveDecision(decision.Decision{Rejected: true}, "contact")
	m.ObserveDecision(decision.Decision{Dropped: []string{"keyContact", "roles:+admin", "roles:-editor:x"}}, "profile")
	m.ObserveDecision(decision.Decision{Effects: []decision.Effect{decision.EffectVerify}}, "profile")

	assert.Equal(t, 1.0, value(t, m.DecisionsTotal.WithLabelValues("contact", "rejected")))
	assert.Equal(t, 1.0, value(t, m.DecisionsTotal.WithLabelValues("profile", "partial")))
	assert.Equal(t, 1.0, value(t, m.DecisionsTotal.WithLabelValues("profile", "allowed")))
	assert.Equal(t, 2.0, value(t, m.DroppedFieldsTotal.WithLabelValues("profile", "roles")))
	assert.Equal(t, 1.0, value(t, m.EffectsTotal.WithLabelValues("verify")))
}

func TestObserveNotificationAndRefresh(t *testing.T) {
	m := New(nil)
	m.ObserveNotification("contact_update", nil)
	m.ObserveNotification("contact_update", errors.New("smtp down"))
	m.ObserveRefresh(42, nil)
	m.ObserveRefresh(0, errors.New("down"))

	assert.Equal(t, 1.0, value(t, m.NotificationsTotal.WithLabelValues("contact_update", "error")))
	assert.Equal(t, 42.0, value(t, m.DirectoryOperations))
	assert.Equal(t, 1.0, value(t, m.DirectoryRefreshTotal.WithLabelValues("error")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveDecision(decision.Decision{}, "contact")
	m.ObserveNotification("x", nil)
	m.ObserveRefresh(1, nil)

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New(nil)
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/v0/lists/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/v0/lists/abc", nil))
	assert.Equal(t, 1.0, value(t, m.HTTPRequestsTotal.WithLabelValues("GET", "/v0/lists/{id}", "404")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "hidapi_http_requests_total"))
}
