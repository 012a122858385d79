package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordTransform(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")
	m.RecordTransform("objects/{**remainder}", TransformApplied)
	m.RecordTransform("objects/{**remainder}", TransformApplied)
	m.RecordTransform("static", TransformPassthrough)

	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.transformsTotal.WithLabelValues("objects/{**remainder}", TransformApplied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.transformsTotal.WithLabelValues("static", TransformPassthrough)))
}

func TestMetrics_RecordRequest(t *testing.T) {
	t.Parallel()

	m := NewMetrics("")
	m.RecordRequest(http.MethodGet, UnmatchedRoute, http.StatusNotFound, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.requestsTotal.WithLabelValues(http.MethodGet, UnmatchedRoute, "404")))
}

func TestMetrics_Gauges(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")
	m.SetSnapshot(3, 2)
	m.SetCircuitBreakerState("objects", 2)
	m.IncActiveRequests()
	m.IncActiveRequests()
	m.DecActiveRequests()

	assert.Equal(t, 3.0, testutil.ToFloat64(m.snapshotVersion))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.snapshotRoutes))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.circuitBreaker.WithLabelValues("objects")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeRequests))
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")
	m.SetBuildInfo("dev", "abc", "now")
	m.RecordUpstreamError("objects", "timeout")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_build_info")
	assert.Contains(t, rec.Body.String(), "test_upstream_errors_total")
	assert.NotNil(t, m.Registry())
}
