// Package telemetry wires OpenTelemetry metrics to a Prometheus exporter and
// defines the marketplace instruments.
package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// ShutdownFunc releases telemetry resources.
type ShutdownFunc func(ctx context.Context) error

// Setup installs a global MeterProvider exporting to the default Prometheus registry.
// Returns a shutdown function that must be called on exit.
func Setup(ctx context.Context) (ShutdownFunc, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return provider.Shutdown, nil
}

// MetricsHandler returns an http.Handler that serves Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// Metrics holds the marketplace instruments. A nil *Metrics records nothing,
// so callers never need to check.
type Metrics struct {
	httpRequestsTotal    otelmetric.Int64Counter
	httpRequestDuration  otelmetric.Float64Histogram
	authValidationsTotal otelmetric.Int64Counter
	authzDecisionsTotal  otelmetric.Int64Counter
	mutationsTotal       otelmetric.Int64Counter
}

// NewMetrics creates the instruments on the global MeterProvider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("marketplace")
	m := &Metrics{}
	var err error

	latencyBuckets := otelmetric.WithExplicitBucketBoundaries(
		0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0,
	)

	if m.httpRequestsTotal, err = meter.Int64Counter("marketplace_http_requests_total",
		otelmetric.WithDescription("Total HTTP requests")); err != nil {
		return nil, fmt.Errorf("creating http_requests_total: %w", err)
	}
	if m.httpRequestDuration, err = meter.Float64Histogram("marketplace_http_request_duration_seconds",
		otelmetric.WithDescription("HTTP request duration"), latencyBuckets); err != nil {
		return nil, fmt.Errorf("creating http_request_duration: %w", err)
	}
	if m.authValidationsTotal, err = meter.Int64Counter("marketplace_auth_validations_total",
		otelmetric.WithDescription("Caller identity validations by mechanism")); err != nil {
		return nil, fmt.Errorf("creating auth_validations_total: %w", err)
	}
	if m.authzDecisionsTotal, err = meter.Int64Counter("marketplace_authz_decisions_total",
		otelmetric.WithDescription("Authorization resolutions by outcome")); err != nil {
		return nil, fmt.Errorf("creating authz_decisions_total: %w", err)
	}
	if m.mutationsTotal, err = meter.Int64Counter("marketplace_mutations_total",
		otelmetric.WithDescription("State-changing operations by outcome")); err != nil {
		return nil, fmt.Errorf("creating mutations_total: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request. route should be the route pattern,
// not the raw path, to bound cardinality.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, durationSec float64) {
	if m == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		methodAttr(method),
		routeAttr(route),
		statusAttr(status),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, durationSec, attrs)
}

// RecordAuthValidation records a caller identity check ("mtls", "bearer") and its result.
func (m *Metrics) RecordAuthValidation(ctx context.Context, mechanism, result string) {
	if m == nil {
		return
	}
	m.authValidationsTotal.Add(ctx, 1, otelmetric.WithAttributes(mechanismAttr(mechanism), resultAttr(result)))
}

// RecordAuthzDecision records the outcome of an authorization resolution
// ("owner", "admin", "denied", "anonymous", "error").
func (m *Metrics) RecordAuthzDecision(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.authzDecisionsTotal.Add(ctx, 1, otelmetric.WithAttributes(resultAttr(result)))
}

// RecordMutation records a state-changing operation and its outcome code.
func (m *Metrics) RecordMutation(ctx context.Context, operation, result string) {
	if m == nil {
		return
	}
	m.mutationsTotal.Add(ctx, 1, otelmetric.WithAttributes(operationAttr(operation), resultAttr(result)))
}
