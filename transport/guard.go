package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/kbukum/vimeonet/resilience"
)

// StatusError reports a 5xx response to the circuit breaker.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server responded %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsBreakerFailure counts transport failures and server errors. Client
// errors and cancellations do not say anything about the server's health.
func IsBreakerFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	return true
}

// Guard admits exchanges through an optional rate limiter and circuit
// breaker. A nil *Guard admits everything.
type Guard struct {
	rl *resilience.RateLimiter
	cb *resilience.CircuitBreaker
}

// NewGuard builds the guard described by cfg.
func NewGuard(cfg Config) *Guard {
	g := &Guard{}
	if cfg.RateLimiter != nil {
		g.rl = resilience.NewRateLimiter(*cfg.RateLimiter)
	}
	if cfg.CircuitBreaker != nil {
		bc := *cfg.CircuitBreaker
		if bc.IsFailure == nil {
			bc.IsFailure = IsBreakerFailure
		}
		g.cb = resilience.NewCircuitBreaker(bc)
	}
	return g
}

// Acquire waits for a rate limiter token, then asks the breaker for a slot.
// A successful Acquire must be paired with one Release.
func (g *Guard) Acquire(ctx context.Context) error {
	if g == nil {
		return nil
	}
	if g.rl != nil {
		if err := g.rl.Wait(ctx); err != nil {
			return err
		}
	}
	if g.cb != nil {
		return g.cb.Allow()
	}
	return nil
}

// Release reports the exchange outcome to the breaker.
func (g *Guard) Release(status int, err error) {
	if g == nil || g.cb == nil {
		return
	}
	if err == nil && status >= 500 {
		err = &StatusError{StatusCode: status}
	}
	g.cb.Record(err)
}

// Breaker returns the circuit breaker, or nil if none is configured.
func (g *Guard) Breaker() *resilience.CircuitBreaker {
	if g == nil {
		return nil
	}
	return g.cb
}
