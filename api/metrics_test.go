package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attributesToMap(attrs []attribute.KeyValue) map[string]any {
	out := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

func TestRequestMetricsLogsAndTracesRequest(t *testing.T) {
	sr := setupTestTracer(t)
	s := newTestServer(t, nil)
	s.do(http.MethodPost, "/api/tasks", `{"title":"x"}`, nil)
	s.hook.Reset()

	if rec := s.do(http.MethodGet, "/api/board", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var entry *log.Entry
	for _, e := range s.hook.AllEntries() {
		if e.Message == "http.request.metrics" {
			entry = e
		}
	}
	if entry == nil {
		t.Fatalf("expected a metrics log line, got %d entries", len(s.hook.AllEntries()))
	}
	if entry.Data["route"] != "/api/board" || entry.Data["status"] != http.StatusOK {
		t.Fatalf("unexpected fields: %#v", entry.Data)
	}
	if entry.Data["tasks_returned"] != 1 {
		t.Fatalf("expected tasks_returned=1, got %#v", entry.Data["tasks_returned"])
	}

	spans := sr.Ended()
	if len(spans) == 0 {
		t.Fatalf("expected spans to be recorded")
	}
	span := spans[len(spans)-1]
	if span.Name() != "GET /api/board" {
		t.Fatalf("unexpected span name %q", span.Name())
	}
	attrs := attributesToMap(span.Attributes())
	if code, ok := attrs["http.status_code"].(int64); !ok || code != http.StatusOK {
		t.Fatalf("unexpected http.status_code: %#v", attrs["http.status_code"])
	}
	if span.Status().Code == codes.Error {
		t.Fatalf("unexpected error status on span")
	}
}

func TestRequestMetricsMarksServerErrors(t *testing.T) {
	sr := setupTestTracer(t)
	s := newTestServer(t, nil)
	s.store.saveErr = errors.New("disk full")

	if rec := s.do(http.MethodPost, "/api/tasks", `{"title":"x"}`, nil); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Status().Code != codes.Error || span.Status().Description != "persist" {
		t.Fatalf("unexpected span status: %+v", span.Status())
	}
	attrs := attributesToMap(span.Attributes())
	if attrs["board.error_stage"] != "persist" {
		t.Fatalf("expected error stage attribute, got %#v", attrs["board.error_stage"])
	}
}

func TestRequestMetricsNilSafe(t *testing.T) {
	var m *requestMetrics
	m.SetTasksReturned(3)
	m.SetErrorStage("x")
	m.Log(http.StatusOK, nil)

	logger, hook := test.NewNullLogger()
	m = newRequestMetrics(logger, nil, http.MethodGet, "/x")
	m.SetTasksReturned(-4)
	m.Log(http.StatusNotFound, errors.New("missing"))
	entry := hook.LastEntry()
	if entry == nil || entry.Data["error"] != "missing" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
	if _, ok := entry.Data["tasks_returned"]; ok {
		t.Fatalf("tasks_returned should be omitted when zero")
	}
}
