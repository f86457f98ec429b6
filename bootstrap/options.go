package bootstrap

import (
	"time"

	"github.com/kbukum/vimeonet/config"
	"github.com/kbukum/vimeonet/keychain"
	"github.com/kbukum/vimeonet/logger"
	"github.com/kbukum/vimeonet/reachability"
	"github.com/kbukum/vimeonet/transport"
)

// Option configures the App during creation.
type Option func(*appOptions)

// appOptions collects all option values before applying to App.
type appOptions struct {
	logger          *logger.Logger
	session         transport.Session
	store           keychain.Store
	reachSource     reachability.Source
	onReachability  reachability.Listener
	fs              config.FileSystem
	gracefulTimeout time.Duration
}

// resolveOptions applies all options and returns the collected values.
func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{gracefulTimeout: 15 * time.Second}
	for _, opt := range opts {
		opt(o)
	}
	if o.fs == nil {
		o.fs = &config.RealFileSystem{}
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is built from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithSession replaces the configured transport session.
func WithSession(s transport.Session) Option {
	return func(o *appOptions) { o.session = s }
}

// WithKeychain replaces the configured account store backend.
func WithKeychain(s keychain.Store) Option {
	return func(o *appOptions) { o.store = s }
}

// WithReachabilitySource replaces the TCP probe, typically with a platform
// notifier.
func WithReachabilitySource(src reachability.Source) Option {
	return func(o *appOptions) { o.reachSource = src }
}

// WithReachabilityListener receives every reachability status change.
func WithReachabilityListener(fn reachability.Listener) Option {
	return func(o *appOptions) { o.onReachability = fn }
}

// WithFileSystem overrides how default directories are resolved.
func WithFileSystem(fs config.FileSystem) Option {
	return func(o *appOptions) { o.fs = fs }
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) { o.gracefulTimeout = d }
}
