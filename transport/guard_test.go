package transport

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/kbukum/vimeonet/resilience"
)

func TestIsBreakerFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"cancelled", context.Canceled, false},
		{"server error", &StatusError{StatusCode: 503}, true},
		{"client error", &StatusError{StatusCode: 404}, false},
		{"transport failure", errors.New("connection refused"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBreakerFailure(tt.err); got != tt.want {
				t.Errorf("IsBreakerFailure(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestGuard_OpensOnServerErrors(t *testing.T) {
	g := NewGuard(Config{
		CircuitBreaker: &resilience.CircuitBreakerConfig{Name: "api", MaxFailures: 2},
	})

	for i := 0; i < 2; i++ {
		if err := g.Acquire(context.Background()); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
		g.Release(http.StatusBadGateway, nil)
	}

	if err := g.Acquire(context.Background()); !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestGuard_IgnoresClientErrors(t *testing.T) {
	g := NewGuard(Config{
		CircuitBreaker: &resilience.CircuitBreakerConfig{Name: "api", MaxFailures: 1},
	})

	for i := 0; i < 3; i++ {
		if err := g.Acquire(context.Background()); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
		g.Release(http.StatusNotFound, nil)
	}
	if g.Breaker().State() != resilience.StateClosed {
		t.Errorf("expected closed breaker, got %s", g.Breaker().State())
	}
}

func TestGuard_RateLimiterHonoursContext(t *testing.T) {
	g := NewGuard(Config{
		RateLimiter: &resilience.RateLimiterConfig{Name: "api", Rate: 0.001, Burst: 1},
	})
	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.Acquire(ctx); err == nil {
		t.Error("expected acquire to fail on a cancelled context")
	}
}

func TestGuard_NilAdmitsEverything(t *testing.T) {
	var g *Guard
	if err := g.Acquire(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	g.Release(500, nil)
	if g.Breaker() != nil {
		t.Error("expected nil breaker")
	}
}
