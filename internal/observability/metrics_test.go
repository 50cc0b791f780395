package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crmkit/crm-authz/internal/domain"
)

func TestRecordDecision(t *testing.T) {
	m := NewMetrics()
	m.RecordDecision(domain.CapDeleteCalls, false)
	m.RecordDecision(domain.CapDeleteCalls, false)
	m.RecordDecision(domain.CapViewCalls, true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.decisions.WithLabelValues("delete_calls", "deny")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decisions.WithLabelValues("view_calls", "allow")))
}

func TestRequestAndErrorCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/v1/me/capabilities", "GET", 200, 5*time.Millisecond)
	m.RecordError("/v1/me/capabilities", "GET", "FORBIDDEN")
	m.RecordSnapshot("identity", "cache")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/v1/me/capabilities", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/v1/me/capabilities", "GET", "FORBIDDEN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.snapshots.WithLabelValues("identity", "cache")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordDecision(domain.CapViewCalls, true)
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordSnapshot("team_index", "directory")
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := NewMetrics()
	m.RecordDecision(domain.CapExportReports, true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `crm_authz_decisions_total{capability="export_reports",outcome="allow"} 1`)
}
