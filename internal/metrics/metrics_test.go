package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpontes/smartbin/backend/internal/metrics"
)

// scrape renders the /metrics endpoint into a string.
func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetrics_countersAppearInScrape(t *testing.T) {
	m := metrics.New()

	m.CollectionIngested("metal")
	m.CollectionIngested("metal")
	m.CollectionIngested("vidro")
	m.EmptyDetection()
	m.ObserveRequest(http.MethodGet, "/api/coletas", http.StatusOK, 5*time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `smartbin_api_collections_ingested_total{tipo="metal"} 2`)
	assert.Contains(t, body, `smartbin_api_collections_ingested_total{tipo="vidro"} 1`)
	assert.Contains(t, body, `smartbin_api_empty_detections_total 1`)
	assert.Contains(t, body, `smartbin_api_http_requests_total{method="GET",path="/api/coletas",status="200"} 1`)
	assert.Contains(t, body, "smartbin_api_http_request_duration_seconds_bucket")
}

// TestMetrics_nilReceiverIsNoOp pins the convention that lets callers skip
// nil checks: recording on a nil *Metrics does nothing and never panics.
func TestMetrics_nilReceiverIsNoOp(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.CollectionIngested("metal")
		m.EmptyDetection()
		m.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	})
}
