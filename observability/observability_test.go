package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/vimeonet/component"
)

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.ServiceName != "vimeonet" || cfg.Endpoint != "localhost:4318" || cfg.MetricInterval != 15*time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{SampleRate: 0.5}, ""},
		{"negative rate", Config{SampleRate: -0.1}, "sample_rate"},
		{"rate above one", Config{SampleRate: 1.5}, "sample_rate"},
		{"enabled without endpoint", Config{Enabled: true}, "endpoint"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestSetupDisabled(t *testing.T) {
	p, err := Setup(context.Background(), Config{}, nil)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if p.Enabled() {
		t.Error("expected disabled providers")
	}
	_, span := p.TracerProvider().Tracer("test").Start(context.Background(), "op")
	if span.IsRecording() {
		t.Error("expected a non-recording span")
	}
	span.End()
	if h := p.Health(context.Background()); h.Status != component.StatusHealthy || h.Message != "disabled" {
		t.Errorf("unexpected health %+v", h)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestSetupEnabled(t *testing.T) {
	p, err := Setup(context.Background(), Config{
		Enabled:    true,
		Endpoint:   "127.0.0.1:1",
		Insecure:   true,
		SampleRate: 1,
	}, nil)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if _, ok := p.TracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Errorf("expected an SDK tracer provider, got %T", p.TracerProvider())
	}
	if _, ok := p.MeterProvider().(*sdkmetric.MeterProvider); !ok {
		t.Errorf("expected an SDK meter provider, got %T", p.MeterProvider())
	}
	_, span := p.TracerProvider().Tracer("test").Start(context.Background(), "op")
	if !span.IsRecording() {
		t.Error("expected a recording span")
	}

	// The collector is unreachable; Stop must still return once ctx ends.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = p.Stop(ctx)
}

func TestSetupRejectsInvalidConfig(t *testing.T) {
	if _, err := Setup(context.Background(), Config{SampleRate: 2}, nil); err == nil {
		t.Fatal("expected an error")
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.5, "TraceIDRatioBased{0.5}"},
	}
	for _, tc := range tests {
		if got := sampler(tc.rate).Description(); got != tc.want {
			t.Errorf("rate %v: expected %q, got %q", tc.rate, tc.want, got)
		}
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource(Config{ServiceName: "player", ServiceVersion: "2.0.0"})
	if err != nil {
		t.Fatalf("newResource: %v", err)
	}
	found := map[string]string{}
	for _, kv := range res.Attributes() {
		found[string(kv.Key)] = kv.Value.AsString()
	}
	if found["service.name"] != "player" || found["service.version"] != "2.0.0" {
		t.Errorf("unexpected attributes %v", found)
	}
}
