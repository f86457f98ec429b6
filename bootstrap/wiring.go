package bootstrap

import (
	"fmt"

	"github.com/kbukum/vimeonet/config"
	"github.com/kbukum/vimeonet/encryption"
	"github.com/kbukum/vimeonet/keychain"
	"github.com/kbukum/vimeonet/logger"
	"github.com/kbukum/vimeonet/resilience"
	"github.com/kbukum/vimeonet/transport"
	"github.com/kbukum/vimeonet/transport/nethttp"
	"github.com/kbukum/vimeonet/transport/restysession"
)

// newSession builds the configured session adapter with its breaker and
// limiter.
func newSession(cfg TransportConfig, log *logger.Logger) (transport.Session, error) {
	tc := cfg.Config
	if cfg.BreakerFailures > 0 {
		tc.CircuitBreaker = transport.DefaultCircuitBreakerConfig(tc.Name)
		tc.CircuitBreaker.MaxFailures = cfg.BreakerFailures
		tc.CircuitBreaker.Timeout = cfg.BreakerTimeout
		tc.CircuitBreaker.OnStateChange = breakerLogger(log)
	}
	if cfg.Rate > 0 {
		tc.RateLimiter = transport.DefaultRateLimiterConfig(tc.Name)
		tc.RateLimiter.Rate = cfg.Rate
		tc.RateLimiter.Burst = cfg.Burst
	}

	switch cfg.Kind {
	case TransportResty:
		return restysession.New(tc, restysession.WithLogger(log))
	case TransportHTTP, "":
		return nethttp.New(tc, nethttp.WithLogger(log))
	}
	return nil, fmt.Errorf("transport: unsupported kind %q", cfg.Kind)
}

// newKeychain returns an encrypted file store, or a memory store when no
// encryption key is configured.
func newKeychain(cfg KeychainConfig, name string, fs config.FileSystem) (keychain.Store, error) {
	if !cfg.Persistent() {
		return keychain.NewMemoryStore(), nil
	}
	alg, err := encryption.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	enc, err := encryption.New(cfg.EncryptionKey, encryption.WithAlgorithm(alg))
	if err != nil {
		return nil, err
	}
	dir, err := cfg.keychainDir(fs, name)
	if err != nil {
		return nil, err
	}
	return keychain.NewFileStore(dir, cfg.Service, cfg.AccessGroup, enc)
}

func breakerLogger(log *logger.Logger) func(name string, from, to resilience.State) {
	return func(name string, from, to resilience.State) {
		fields := logger.Fields("breaker", name, "from", from.String(), "to", to.String())
		if to == resilience.StateOpen {
			log.Warn("circuit breaker opened", fields)
			return
		}
		log.Info("circuit breaker state changed", fields)
	}
}
