package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func jsonLogger(buf *bytes.Buffer, level string) *Logger {
	return newWithWriter(&Config{Level: level, Format: "json"}, "test-svc", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, line)
	}
	return entry
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l := New(&Config{Level: "invalid-level", Format: "json"}, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestJSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "info")

	l.WithComponent("discovery").Info("service registered", Fields("service_id", "svc-8000", "port", 8000))

	entry := decodeLine(t, &buf)
	if entry["message"] != "service registered" {
		t.Errorf("unexpected message %v", entry["message"])
	}
	if entry[FieldComponent] != "discovery" {
		t.Errorf("expected component field, got %v", entry[FieldComponent])
	}
	if entry["service_id"] != "svc-8000" {
		t.Errorf("expected service_id field, got %v", entry["service_id"])
	}
	if entry["service"] != "test-svc" {
		t.Errorf("expected service field, got %v", entry["service"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "warn")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at warn level, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected warn message, got %q", buf.String())
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "info")
	l.WithError(errors.New("boom")).Error("failed")

	entry := decodeLine(t, &buf)
	if entry[FieldError] != "boom" {
		t.Errorf("expected error field 'boom', got %v", entry[FieldError])
	}
}

func TestWithContextRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "info")

	ctx := ContextWithRequestID(context.Background(), "req-42")
	l.WithContext(ctx).Info("handled")

	entry := decodeLine(t, &buf)
	if entry[FieldRequestID] != "req-42" {
		t.Errorf("expected request_id req-42, got %v", entry[FieldRequestID])
	}
}

func TestWithContextWithoutRequestID(t *testing.T) {
	l := NewNop()
	if l.WithContext(context.Background()) != l {
		t.Error("expected the same logger when context has no request id")
	}
}

func TestRequestIDFromContext(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty id, got %q", got)
	}
	ctx := ContextWithRequestID(context.Background(), "abc")
	if got := RequestIDFromContext(ctx); got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
}

func TestSetGlobalLogger(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	var buf bytes.Buffer
	SetGlobalLogger(jsonLogger(&buf, "debug"))
	Info("global message")
	if !strings.Contains(buf.String(), "global message") {
		t.Errorf("expected package-level Info to use the global logger, got %q", buf.String())
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stdout" {
		t.Errorf("expected output 'stdout', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp enabled")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid json", Config{Level: "debug", Format: "json"}, false},
		{"valid console", Config{Level: "info", Format: "console"}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestConsoleFormatNoColor(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&Config{Level: "info", Format: "console", NoColor: true}, "consul-service", &buf)
	l.Info("hello")
	out := buf.String()
	if !strings.Contains(out, "[CON][INF]") {
		t.Errorf("expected service tag and level tag, got %q", out)
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "skipped", "dangling")
	if m["a"] != 1 || m["b"] != "two" {
		t.Errorf("unexpected fields %v", m)
	}
	if len(m) != 2 {
		t.Errorf("expected 2 fields, got %d", len(m))
	}
}

func TestErrorFields(t *testing.T) {
	m := ErrorFields("register", errors.New("refused"))
	if m[FieldOperation] != "register" || m[FieldError] != "refused" {
		t.Errorf("unexpected fields %v", m)
	}
}

func TestDurationFields(t *testing.T) {
	m := DurationFields("list", 1500*time.Millisecond)
	if m[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500ms, got %v", m[FieldDuration])
	}
}
