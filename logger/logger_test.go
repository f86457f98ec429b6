package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "debug", Format: "json"}, "vimeonet", &buf)
	l.WithComponent("client").Info("request completed", Fields(FieldPath, "/me", FieldStatusCode, 200))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "request completed" {
		t.Errorf("unexpected message %v", entry["message"])
	}
	if entry[FieldComponent] != "client" || entry[FieldService] != "vimeonet" {
		t.Errorf("missing component/service fields: %v", entry)
	}
	if entry[FieldPath] != "/me" || entry[FieldStatusCode] != float64(200) {
		t.Errorf("missing call fields: %v", entry)
	}
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "warn", Format: "json"}, "", &buf)
	l.Info("hidden")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected info/debug to be filtered, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn output, got %q", buf.String())
	}
}

func TestNewInvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "invalid-level", Format: "json"}, "test", &buf)
	l.Info("still logs at info")
	if buf.Len() == 0 {
		t.Error("expected invalid level to fall back to info")
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("discarded", Fields("k", "v"))
	l.WithComponent("x").WithError(errors.New("boom")).Warn("discarded")
	if OrNop(nil) == nil {
		t.Error("OrNop(nil) must return a logger")
	}
	if OrNop(l) != l {
		t.Error("OrNop must return the given logger")
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "json"}, "", &buf)
	l.WithFields(map[string]interface{}{FieldCacheKey: "cached.me.1"}).WithError(errors.New("boom")).Error("failed")
	out := buf.String()
	if !strings.Contains(out, "cached.me.1") || !strings.Contains(out, "boom") {
		t.Errorf("expected fields in output, got %q", out)
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "console", NoColor: true}, "svc", &buf)
	l.Info("hello")
	if !strings.Contains(buf.String(), "[INF]") || !strings.Contains(buf.String(), "hello") {
		t.Errorf("unexpected console output %q", buf.String())
	}
}

func TestFieldHelpers(t *testing.T) {
	f := Fields("a", 1, "b")
	if len(f) != 1 || f["a"] != 1 {
		t.Errorf("unexpected fields %v", f)
	}
	ef := ErrorFields("save", errors.New("disk full"))
	if ef[FieldOperation] != "save" || ef[FieldError] != "disk full" {
		t.Errorf("unexpected error fields %v", ef)
	}
	df := DurationFields("fetch", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("unexpected duration fields %v", df)
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
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json", Output: "stdout"}, false},
		{"valid console", Config{Level: "debug", Format: "console", Output: "stderr"}, false},
		{"invalid level", Config{Level: "bad", Format: "json", Output: "stdout"}, true},
		{"invalid format", Config{Level: "info", Format: "xml", Output: "stdout"}, true},
		{"invalid output", Config{Level: "info", Format: "json", Output: "file"}, true},
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
