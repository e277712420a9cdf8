package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/sai-sandeep-seelam/CheatStack/internal/platform/requestctx"
)

func TestWriteErrorFillsIdentifiersFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-123")
	ctx = requestctx.WithTrace(ctx, requestctx.TraceInfo{TraceID: "trace-abc"})

	rec := httptest.NewRecorder()
	WriteError(ctx, rec, BadRequest("invalid_sort", "sort must be one of relevance, popularity, newest").
		WithDetails(map[string]any{"field": "sort", "status": 999}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["error"] != "invalid_sort" {
		t.Errorf("unexpected error code %v", payload["error"])
	}
	if payload["request_id"] != "req-123" {
		t.Errorf("expected request id from context, got %v", payload["request_id"])
	}
	if payload["trace_id"] != "trace-abc" {
		t.Errorf("expected trace id from context, got %v", payload["trace_id"])
	}
	if payload["field"] != "sort" {
		t.Errorf("expected details merged, got %v", payload["field"])
	}
	if payload["status"] != float64(http.StatusBadRequest) {
		t.Errorf("details must not override status, got %v", payload["status"])
	}
}

func TestNewErrorDefaultsStatusAndStripsNewlines(t *testing.T) {
	err := NewError("boom", "line one\nline two", 0)
	if err.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500 default, got %d", err.Status)
	}
	if err.Message != "line one line two" {
		t.Fatalf("expected newlines replaced, got %q", err.Message)
	}
}
