package resilience

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiterConfig configures a rate limiter.
type RateLimiterConfig struct {
	// Name identifies this limiter in logs.
	Name string
	// Rate is the number of requests allowed per second.
	Rate float64
	// Burst is the maximum burst size.
	Burst int
}

// DefaultRateLimiterConfig returns sensible defaults.
func DefaultRateLimiterConfig(name string) RateLimiterConfig {
	return RateLimiterConfig{
		Name:  name,
		Rate:  10.0,
		Burst: 20,
	}
}

// RateLimiter is a token bucket limiter.
type RateLimiter struct {
	name string
	lim  *rate.Limiter
}

// NewRateLimiter creates a limiter with a full bucket.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.Rate <= 0 {
		cfg.Rate = 10.0
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(cfg.Rate)
		if cfg.Burst < 1 {
			cfg.Burst = 1
		}
	}
	return &RateLimiter{name: cfg.Name, lim: rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst)}
}

// Wait blocks until a token is available or ctx ends.
func (rl *RateLimiter) Wait(ctx context.Context) error { return rl.lim.Wait(ctx) }
