package logger

import (
	"context"
	"testing"
)

func TestWithLogger_FromContext(t *testing.T) {
	l, buf := newJSON(t, "info")

	ctx := WithLogger(context.Background(), l)
	FromContext(ctx).Info("test message")

	if buf.Len() == 0 {
		t.Error("Logger from context should produce output")
	}
}

func TestFromContext_Default(t *testing.T) {
	if l := FromContext(context.Background()); l == nil {
		t.Error("FromContext should return default logger, got nil")
	}
}

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("RequestIDFromContext() = %q, want empty string", got)
	}

	ctx = WithRequestID(ctx, "01HX7ZK3V9Q8")
	if got := RequestIDFromContext(ctx); got != "01HX7ZK3V9Q8" {
		t.Errorf("RequestIDFromContext() = %q, want %q", got, "01HX7ZK3V9Q8")
	}
}

func TestL(t *testing.T) {
	tests := []struct {
		name      string
		requestID string
	}{
		{"with request id", "req-12345"},
		{"without request id", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := newJSON(t, "info")

			ctx := WithLogger(context.Background(), l)
			if tt.requestID != "" {
				ctx = WithRequestID(ctx, tt.requestID)
			}
			L(ctx).Info("test message")

			entry := decode(t, buf)
			got, ok := entry["request_id"]
			if tt.requestID == "" {
				if ok {
					t.Errorf("request_id = %v, want absent", got)
				}
				return
			}
			if got != tt.requestID {
				t.Errorf("request_id = %v, want %q", got, tt.requestID)
			}
		})
	}
}
