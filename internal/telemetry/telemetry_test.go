package telemetry_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atinyakov/GophMarket/internal/telemetry"
)

func TestSetupAndShutdown(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background())
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestMetrics(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background())
	require.NoError(t, err)
	defer shutdown(context.Background())

	m, err := telemetry.NewMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordHTTPRequest(ctx, http.MethodGet, "/api/authz", http.StatusOK, 0.01)
	m.RecordAuthValidation(ctx, "mtls", "success")
	m.RecordAuthzDecision(ctx, "admin")
	m.RecordMutation(ctx, "remove_admin", "last_admin")

	rec := httptest.NewRecorder()
	telemetry.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{
		"marketplace_http_requests_total",
		"marketplace_http_request_duration_seconds",
		"marketplace_auth_validations_total",
		"marketplace_authz_decisions_total",
		"marketplace_mutations_total",
	} {
		require.Contains(t, string(body), name)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *telemetry.Metrics
	ctx := context.Background()
	m.RecordHTTPRequest(ctx, http.MethodGet, "/", http.StatusOK, 0)
	m.RecordAuthValidation(ctx, "bearer", "failure")
	m.RecordAuthzDecision(ctx, "denied")
	m.RecordMutation(ctx, "verify_vendor", "ok")
}
