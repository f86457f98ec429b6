package resilience

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_WaitAllowsBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Name: "test", Rate: 0.001, Burst: 3})

	for i := 0; i < 3; i++ {
		if err := rl.Wait(context.Background()); err != nil {
			t.Fatalf("request %d should pass: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); err == nil {
		t.Error("request beyond burst should fail once the context expires")
	}
}

func TestRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Name: "test"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	for i := 0; i < 10; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("request %d within the default burst failed: %v", i, err)
		}
	}
	if err := rl.Wait(ctx); err == nil {
		t.Error("expected the default burst of 10 to be exhausted")
	}
}
