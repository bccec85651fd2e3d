package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	metricSDK "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestTelemetry() (*Telemetry, *metricSDK.ManualReader) {
	reader := metricSDK.NewManualReader()
	provider := metricSDK.NewMeterProvider(metricSDK.WithReader(reader))
	return newTelemetry("orchestrator-service", noop.NewTracerProvider(), provider), reader
}

func collect(t *testing.T, reader *metricSDK.ManualReader) map[string]metricdata.Aggregation {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	metrics := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			metrics[m.Name] = m.Data
		}
	}
	return metrics
}

func TestRecordCounter(t *testing.T) {
	tel, reader := newTestTelemetry()
	ctx := WithTelemetry(context.Background(), tel)

	RecordCounter(ctx, "orchestrator_runs_started_total", "Orchestration runs started", 1, attribute.String("orchestration", "tenantCreation"))
	RecordCounter(ctx, "orchestrator_runs_started_total", "Orchestration runs started", 2, attribute.String("orchestration", "tenantCreation"))

	metrics := collect(t, reader)
	sum, ok := metrics["orchestrator_runs_started_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)

	service, ok := sum.DataPoints[0].Attributes.Value("service")
	require.True(t, ok)
	assert.Equal(t, "orchestrator-service", service.AsString())
}

func TestRecord_WithoutTelemetry(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	assert.NotPanics(t, func() {
		RecordCounter(context.Background(), "orchestrator_step_retries_total", "Step retries dispatched", 1)
		RecordHistogram(context.Background(), "http_request_duration_seconds", "HTTP request duration", 0.2)
		_, span := StartSpan(context.Background(), "noop")
		span.End()
	})
}

func TestMiddleware(t *testing.T) {
	tel, reader := newTestTelemetry()

	r := chi.NewRouter()
	r.Use(Middleware(tel))
	r.Get("/executions/{flowId}", func(w http.ResponseWriter, r *http.Request) {
		assert.Same(t, tel, FromContext(r.Context()))
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/executions/flow-1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	metrics := collect(t, reader)
	requests, ok := metrics["http_requests_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, requests.DataPoints, 1)

	attrs := requests.DataPoints[0].Attributes
	route, _ := attrs.Value("route")
	class, _ := attrs.Value("status_class")
	assert.Equal(t, "/executions/{flowId}", route.AsString())
	assert.Equal(t, "4xx", class.AsString())
	assert.Contains(t, metrics, "http_request_duration_seconds")
}

func TestGetStatusClass(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{code: 101, expected: "1xx"},
		{code: 202, expected: "2xx"},
		{code: 304, expected: "3xx"},
		{code: 400, expected: "4xx"},
		{code: 503, expected: "5xx"},
		{code: 0, expected: "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, getStatusClass(tt.code))
	}
}
