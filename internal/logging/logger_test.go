package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// Setup is process-global; restore the default afterwards so other tests
// keep logging to stdout.
func restoreLogger(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { Setup("", "") })
}

func TestSetupWriter_ServiceAttribute(t *testing.T) {
	restoreLogger(t)
	var buf bytes.Buffer
	SetupWriter(&buf, "info", "json")

	Logger.Info("cache refreshed", "stored", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if rec["service"] != "quote-gateway" {
		t.Errorf("service = %v, want quote-gateway", rec["service"])
	}
	if rec["msg"] != "cache refreshed" {
		t.Errorf("msg = %v, want cache refreshed", rec["msg"])
	}
}

func TestSetupWriter_LevelFiltering(t *testing.T) {
	restoreLogger(t)
	var buf bytes.Buffer
	SetupWriter(&buf, "warn", "json")

	Logger.Info("quote served")
	if buf.Len() != 0 {
		t.Errorf("info record emitted at warn level: %s", buf.String())
	}
	Logger.Warn("provider not found")
	if buf.Len() == 0 {
		t.Error("warn record not emitted at warn level")
	}
}

func TestSetupWriter_TextFormat(t *testing.T) {
	restoreLogger(t)
	var buf bytes.Buffer
	SetupWriter(&buf, "", "text")

	Logger.Info("quote served")
	line := buf.String()
	if strings.HasPrefix(strings.TrimSpace(line), "{") {
		t.Errorf("text format produced JSON: %s", line)
	}
	if !strings.Contains(line, "service=quote-gateway") {
		t.Errorf("service attribute missing from text record: %s", line)
	}
}

func TestTraceID_ContextRoundTrip(t *testing.T) {
	ctx := WithTraceID(context.Background(), "abc123")
	if got := TraceIDFromContext(ctx); got != "abc123" {
		t.Errorf("TraceIDFromContext = %q, want abc123", got)
	}
	if got := TraceIDFromContext(context.Background()); got != "" {
		t.Errorf("TraceIDFromContext on bare context = %q, want empty", got)
	}
}

func TestFromContext_AttachesTraceID(t *testing.T) {
	restoreLogger(t)
	var buf bytes.Buffer
	SetupWriter(&buf, "info", "json")

	ctx := WithTraceID(context.Background(), "trace-1")
	FromContext(ctx).Info("quote served")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if rec["trace_id"] != "trace-1" {
		t.Errorf("trace_id = %v, want trace-1", rec["trace_id"])
	}
}

func TestMiddleware_EchoesIncomingRequestID(t *testing.T) {
	var seen string
	h := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = TraceIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/quotes/random", nil)
	req.Header.Set("X-Request-ID", "caller-id")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if seen != "caller-id" {
		t.Errorf("context trace ID = %q, want caller-id", seen)
	}
	if got := rr.Header().Get("X-Request-ID"); got != "caller-id" {
		t.Errorf("X-Request-ID header = %q, want caller-id", got)
	}
}

func TestMiddleware_GeneratesRequestID(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	id := rr.Header().Get("X-Request-ID")
	if len(id) != 32 {
		t.Errorf("generated X-Request-ID = %q, want 32 hex chars", id)
	}
}
