package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func setupTracer() (trace.Tracer, *sdktrace.TracerProvider) {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Tracer("test"), tp
}

func TestInjectTraceContext_WithSpan(t *testing.T) {
	tracer, tp := setupTracer()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	client := NewClient(10*time.Second, 0)

	ctx, span := tracer.Start(context.Background(), "test-operation")
	defer span.End()

	req := httptest.NewRequest(http.MethodGet, "http://example.com/test", nil)
	req = req.WithContext(ctx)

	client.injectTraceContext(req)

	traceparent := req.Header.Get("traceparent")
	if traceparent == "" {
		t.Error("expected traceparent header to be set, got empty")
	}

	// W3C format: version-trace_id-parent_id-trace_flags, 55 chars minimum.
	if len(traceparent) < 55 {
		t.Errorf("traceparent format invalid: %s", traceparent)
	}
}

func TestInjectTraceContext_WithoutSpan(t *testing.T) {
	_, tp := setupTracer()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	client := NewClient(10*time.Second, 0)

	req := httptest.NewRequest(http.MethodGet, "http://example.com/test", nil)

	client.injectTraceContext(req)

	traceparent := req.Header.Get("traceparent")
	if traceparent != "" {
		t.Errorf("expected no traceparent header, got: %s", traceparent)
	}
}

func TestInjectTraceContext_NilRequest(t *testing.T) {
	_, tp := setupTracer()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	client := NewClient(10*time.Second, 0)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("injectTraceContext panicked with nil request: %v", r)
		}
	}()

	client.injectTraceContext(nil)
}

func TestInjectTraceContext_NoPropagator(t *testing.T) {
	originalPropagator := otel.GetTextMapPropagator()
	defer otel.SetTextMapPropagator(originalPropagator)

	otel.SetTextMapPropagator(nil)

	client := NewClient(10*time.Second, 0)

	req := httptest.NewRequest(http.MethodGet, "http://example.com/test", nil)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("injectTraceContext panicked with nil propagator: %v", r)
		}
	}()

	client.injectTraceContext(req)

	traceparent := req.Header.Get("traceparent")
	if traceparent != "" {
		t.Errorf("expected no traceparent header, got: %s", traceparent)
	}
}

func TestDoRequest_TracingIntegration(t *testing.T) {
	tracer, tp := setupTracer()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	var receivedTraceparent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedTraceparent = r.Header.Get("traceparent")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}))
	defer server.Close()

	client := NewClient(10*time.Second, 0)

	ctx, span := tracer.Start(context.Background(), "test-client-request")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	resp, err := client.DoRequest(req)
	if err != nil {
		t.Fatalf("DoRequest failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if receivedTraceparent == "" {
		t.Error("downstream service did not receive traceparent header")
	}

	if len(receivedTraceparent) < 55 {
		t.Errorf("invalid traceparent format received by downstream: %s", receivedTraceparent)
	}
}

func BenchmarkInjectTraceContext(b *testing.B) {
	tracer, tp := setupTracer()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	client := NewClient(10*time.Second, 0)

	ctx, span := tracer.Start(context.Background(), "benchmark-operation")
	defer span.End()

	req := httptest.NewRequest(http.MethodGet, "http://example.com/test", nil)
	req = req.WithContext(ctx)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		client.injectTraceContext(req)
	}
}

func BenchmarkInjectTraceContext_NoSpan(b *testing.B) {
	_, tp := setupTracer()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	client := NewClient(10*time.Second, 0)

	req := httptest.NewRequest(http.MethodGet, "http://example.com/test", nil)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		client.injectTraceContext(req)
	}
}
