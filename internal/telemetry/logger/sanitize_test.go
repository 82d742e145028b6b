package logger

import (
	"log/slog"
	"testing"
)

func TestEscapeControl(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain/path.txt", "plain/path.txt"},
		{"a\nb", `a\nb`},
		{"tab\there", `tab\there`},
		{"nul\x00byte", `nul\x00byte`},
		{"esc\x1b[31m", `esc\x1b[31m`},
		{"unicodé", "unicodé"},
	}

	for _, tt := range tests {
		if got := EscapeControl(tt.in); got != tt.want {
			t.Errorf("EscapeControl(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"Authorization", true},
		{"cookie", true},
		{"api_token", true},
		{"root", false},
		{"segments", false},
	}

	for _, tt := range tests {
		if got := IsSensitiveKey(tt.key); got != tt.want {
			t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestSanitizeAttr(t *testing.T) {
	if got := sanitizeAttr(slog.String("authorization", "Bearer abc")); got.Value.String() != redactedValue {
		t.Errorf("authorization = %q, want redacted", got.Value.String())
	}
	if got := sanitizeAttr(slog.String("authorization", "")); got.Value.String() != "" {
		t.Errorf("empty sensitive value should stay empty, got %q", got.Value.String())
	}
	if got := sanitizeAttr(slog.String("path", "x\ny")); got.Value.String() != `x\ny` {
		t.Errorf("path = %q, want escaped", got.Value.String())
	}
	if got := sanitizeAttr(slog.Int("size", 3)); got.Value.Int64() != 3 {
		t.Errorf("non-string values should pass through, got %v", got.Value)
	}

	group := sanitizeAttr(slog.Group("req", slog.String("cookie", "s=1"), slog.String("root", "a\rb")))
	attrs := group.Value.Group()
	if attrs[0].Value.String() != redactedValue {
		t.Errorf("nested cookie = %q, want redacted", attrs[0].Value.String())
	}
	if attrs[1].Value.String() != `a\rb` {
		t.Errorf("nested root = %q, want escaped", attrs[1].Value.String())
	}
}

func TestLogger_SanitizesOutput(t *testing.T) {
	l, buf := newJSON(t, "info")

	l.Info("path request", "segments", "evil\n{\"level\":\"ERROR\"}")

	entry := decode(t, buf)
	if entry["segments"] != `evil\n{"level":"ERROR"}` {
		t.Errorf("segments = %v", entry["segments"])
	}
}
