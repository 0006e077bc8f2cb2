package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveGateway(t *testing.T) {
	m := New()
	m.ObserveGateway(http.MethodGet, 200, 10*time.Millisecond)
	m.ObserveGateway(http.MethodGet, 200, 20*time.Millisecond)
	m.ObserveGateway(http.MethodPost, 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.gatewayRequests.WithLabelValues("GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.gatewayRequests.WithLabelValues("POST", "error")))
}

func TestObserveTrigger(t *testing.T) {
	m := New()
	m.ObserveTrigger("taboola/sync", true)
	m.ObserveTrigger("outbrain/sync", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.triggerResults.WithLabelValues("outbrain/sync", "false")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveGateway("GET", 200, time.Second)
		m.ObserveTrigger("x", true)
		m.ObserveHTTP("GET", 200)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodGet, 204)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `alertconsole_http_requests_total{method="GET",status="204"} 1`)
}
