package infrastructure

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.ObserveCorruption("welcome-settings")
	m.ObserveCorruption("welcome-settings")
	m.ObserveExchange("success")
	m.ObserveSettingsUpdate("levels")
	m.ObserveRequest("GET", "/api/health", "200")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.corruption.WithLabelValues("welcome-settings")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.oauthExchanges.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.settingsUpdates.WithLabelValues("levels")))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `toothless_persistence_corruption_total{collection="welcome-settings"} 2`)
	assert.Contains(t, string(body), `toothless_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
}
