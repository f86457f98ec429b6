package transport

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/vimeonet/resilience"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "vimeonet"
)

// Config configures a session adapter.
type Config struct {
	// Name identifies the session in logs and breaker callbacks.
	Name string `yaml:"name" mapstructure:"name"`

	// Timeout bounds a whole request or upload. Downloads are bounded only
	// by their context. Defaults to 60s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is sent unless the request sets its own.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// Headers are applied to every request that does not already set them.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// TLS configures the transport's TLS settings.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// CircuitBreaker configures circuit breaker behavior. Nil disables it.
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"-" mapstructure:"-"`

	// RateLimiter configures rate limiting. Nil disables it.
	RateLimiter *resilience.RateLimiterConfig `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "session"
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("transport: timeout must be positive")
	}
	if c.TLS != nil {
		if err := c.TLS.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplyHeaders sets the configured default headers on req without
// overriding anything the request already carries.
func (c *Config) ApplyHeaders(req *http.Request) {
	for k, v := range c.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
}

// DefaultCircuitBreakerConfig returns a breaker config that trips on
// transport failures and 5xx responses only.
func DefaultCircuitBreakerConfig(name string) *resilience.CircuitBreakerConfig {
	cfg := resilience.DefaultCircuitBreakerConfig(name)
	cfg.IsFailure = IsBreakerFailure
	return &cfg
}

// DefaultRateLimiterConfig returns a default rate limiter config.
func DefaultRateLimiterConfig(name string) *resilience.RateLimiterConfig {
	cfg := resilience.DefaultRateLimiterConfig(name)
	return &cfg
}
