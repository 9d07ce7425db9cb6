package observability

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewMetricsWithRegistry("test", reg, reg)
}

func useRecorder(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return exporter
}

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("test-service")

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if cfg.Enabled {
		t.Error("expected tracing disabled by default")
	}
}

func TestInitTracerDisabled(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracerConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("expected no-op shutdown, got %v", err)
	}
}

func TestInitTracerEnabled(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	cfg := DefaultTracerConfig("test-service")
	cfg.Enabled = true

	// The exporter connects lazily, so construction succeeds without a collector.
	shutdown, err := InitTracer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitTracer failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.5, "ParentBased"},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprint(tc.rate), func(t *testing.T) {
			got := samplerFor(tc.rate).Description()
			if !strings.HasPrefix(got, tc.want) {
				t.Errorf("expected %s sampler, got %s", tc.want, got)
			}
		})
	}
}

func TestRecordRegistryOperation(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordRegistryOperation("register", nil, 20*time.Millisecond)
	m.RecordRegistryOperation("register", fmt.Errorf("refused"), time.Millisecond)
	m.RecordRegistryOperation("list", nil, time.Millisecond)

	if got := testutil.ToFloat64(m.RegistryOperations.WithLabelValues("register", OutcomeSuccess)); got != 1 {
		t.Errorf("expected 1 successful register, got %v", got)
	}
	if got := testutil.ToFloat64(m.RegistryOperations.WithLabelValues("register", OutcomeError)); got != 1 {
		t.Errorf("expected 1 failed register, got %v", got)
	}
	if got := testutil.CollectAndCount(m.RegistryDuration); got != 2 {
		t.Errorf("expected 2 duration series, got %d", got)
	}
}

func TestRequestMetrics(t *testing.T) {
	m := newTestMetrics(t)

	m.RequestStarted()
	if got := testutil.ToFloat64(m.ActiveRequests); got != 1 {
		t.Errorf("expected 1 active request, got %v", got)
	}
	m.RequestFinished("GET", "/services", 500, 5*time.Millisecond)

	if got := testutil.ToFloat64(m.ActiveRequests); got != 0 {
		t.Errorf("expected 0 active requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/services", "500")); got != 1 {
		t.Errorf("expected 1 request counted, got %v", got)
	}
}

func TestSetRegistered(t *testing.T) {
	m := newTestMetrics(t)
	m.SetRegistered(true)
	if got := testutil.ToFloat64(m.Registered); got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
	m.SetRegistered(false)
	if got := testutil.ToFloat64(m.Registered); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RequestStarted()
	m.RequestFinished("GET", "/", 200, time.Millisecond)
	m.RecordRegistryOperation("list", nil, time.Millisecond)
	m.SetRegistered(true)
	if m.Handler() == nil {
		t.Error("expected a fallback handler")
	}
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics("consul_service")
	m.RecordRegistryOperation("register", nil, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `consul_service_registry_operations_total{operation="register",outcome="success"} 1`) {
		t.Errorf("expected registry counter in exposition, got:\n%s", body)
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Error("expected Go runtime collector output")
	}
}

func TestStartRegistryOperation(t *testing.T) {
	exporter := useRecorder(t)
	m := newTestMetrics(t)

	_, op := StartRegistryOperation(context.Background(), m, "deregister", Attrs(AttrServiceID, "svc-8000")...)
	op.End(fmt.Errorf("agent unavailable"))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name != "registry.deregister" {
		t.Errorf("expected span 'registry.deregister', got %q", span.Name)
	}
	if span.Status.Code != codes.Error {
		t.Errorf("expected error status, got %v", span.Status.Code)
	}
	if len(span.Events) == 0 {
		t.Error("expected the error to be recorded as an event")
	}
	if got := testutil.ToFloat64(m.RegistryOperations.WithLabelValues("deregister", OutcomeError)); got != 1 {
		t.Errorf("expected failed deregister counted, got %v", got)
	}
}

func TestStartRegistryOperationNilMetrics(t *testing.T) {
	exporter := useRecorder(t)

	_, op := StartRegistryOperation(context.Background(), nil, "list")
	op.End(nil)

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Status.Code == codes.Error {
		t.Errorf("expected one successful span, got %+v", spans)
	}
}

func TestSetSpanError(t *testing.T) {
	exporter := useRecorder(t)

	ctx, span := StartSpan(context.Background(), "test-error")
	SetSpanError(ctx, fmt.Errorf("test error"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Status.Code != codes.Error {
		t.Errorf("expected errored span, got %+v", spans)
	}

	// No recording span: must not panic.
	SetSpanError(context.Background(), fmt.Errorf("no span error"))
}

func TestAttrs(t *testing.T) {
	attrs := Attrs("a", "1", "b", "2", "dangling")
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	if string(attrs[0].Key) != "a" || attrs[0].Value.AsString() != "1" {
		t.Errorf("unexpected attribute %v", attrs[0])
	}
}
