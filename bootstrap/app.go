package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/vimeonet/auth"
	"github.com/kbukum/vimeonet/cache"
	"github.com/kbukum/vimeonet/client"
	"github.com/kbukum/vimeonet/component"
	"github.com/kbukum/vimeonet/keychain"
	"github.com/kbukum/vimeonet/logger"
	"github.com/kbukum/vimeonet/observability"
	"github.com/kbukum/vimeonet/reachability"
	"github.com/kbukum/vimeonet/transport"
)

// App owns a configured client and the components it depends on.
type App struct {
	Name       string
	Cfg        *Config
	Logger     *logger.Logger
	Components *component.Registry
	Summary    *Summary

	Client   *client.Client
	Session  transport.Session
	Auth     *auth.State
	Accounts *auth.AccountStore
	// Cache is nil when caching is disabled.
	Cache *cache.ResponseCache
	// Reachability is nil when monitoring is disabled.
	Reachability *reachability.Manager
	Telemetry    *observability.Providers

	gracefulTimeout time.Duration

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// New builds an App from cfg. It applies defaults, validates the config and
// restores a persisted account. Nothing touches the network until Start.
func New(cfg *Config, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	o := resolveOptions(opts)

	app := &App{
		Name:            cfg.Name,
		Cfg:             cfg,
		Logger:          o.logger,
		gracefulTimeout: o.gracefulTimeout,
	}
	if app.Logger == nil {
		app.Logger = logger.New(&cfg.Logging, cfg.Name)
	}
	app.Components = component.NewRegistry(app.Logger)
	app.Summary = NewSummary(cfg.Name)

	var err error
	if app.Telemetry, err = observability.Setup(context.Background(), cfg.Telemetry, app.Logger); err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	app.Session = o.session
	if app.Session == nil {
		if app.Session, err = newSession(cfg.Transport, app.Logger); err != nil {
			return nil, fmt.Errorf("transport: %w", err)
		}
	}

	if !cfg.Cache.Disabled {
		app.Cache, err = cache.New(cfg.Cache.Config,
			cache.WithLogger(app.Logger),
			cache.WithMeterProvider(app.Telemetry.MeterProvider()),
		)
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
	}

	store := o.store
	if store == nil {
		if store, err = newKeychain(cfg.Keychain, cfg.Name, o.fs); err != nil {
			return nil, fmt.Errorf("keychain: %w", err)
		}
	}
	app.Accounts = auth.NewAccountStore(store, "")
	app.Auth = auth.NewState(
		auth.WithClientCredentials(cfg.API.ClientID, cfg.API.ClientSecret),
		auth.WithLogger(app.Logger),
	)

	clientOpts := []client.Option{
		client.WithAuth(app.Auth),
		client.WithLogger(app.Logger),
		client.WithTracerProvider(app.Telemetry.TracerProvider()),
		client.WithMeterProvider(app.Telemetry.MeterProvider()),
	}
	if app.Cache != nil {
		clientOpts = append(clientOpts, client.WithCache(app.Cache))
	}
	if app.Client, err = client.New(cfg.API.Config, app.Session, clientOpts...); err != nil {
		return nil, err
	}

	app.restoreAccount()

	if !cfg.Reachability.Disabled {
		src := o.reachSource
		if src == nil {
			src = reachability.NewProbeSource(cfg.Reachability.Host, cfg.Reachability.Interval)
		}
		app.Reachability = reachability.NewManager(src,
			reachability.WithLogger(app.Logger),
			reachability.WithListener(app.reachabilityListener(o.onReachability)),
		)
	}

	if err := app.registerComponents(); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) registerComponents() error {
	components := []component.Component{a.Telemetry}
	if a.Cache != nil {
		components = append(components, a.Cache)
	}
	if a.Reachability != nil {
		components = append(components, a.Reachability)
	}
	for _, c := range components {
		if err := a.Components.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// restoreAccount installs the persisted account. A store failure leaves the
// app unauthenticated.
func (a *App) restoreAccount() {
	restored, err := a.Accounts.Restore(a.Auth)
	switch {
	case err != nil:
		fields := logger.Fields(logger.FieldError, err.Error())
		var kerr *keychain.Error
		if errors.As(err, &kerr) {
			fields["keychain_status"] = kerr.Status.Message()
		}
		a.Logger.Warn("failed to restore account", fields)
	case restored:
		a.Logger.Info("account restored", logger.Fields("mode", a.Auth.Mode().String()))
	}
}

func (a *App) reachabilityListener(next reachability.Listener) reachability.Listener {
	return func(s reachability.Status) {
		a.Logger.Info("reachability changed", logger.Fields(logger.FieldStatus, s.String()))
		if next != nil {
			next(s)
		}
	}
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Start starts every component, runs the start hooks, checks readiness and
// runs the ready hooks. An unhealthy component is logged, not fatal.
func (a *App) Start(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("Starting application", logger.Fields("name", a.Name))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.Summary.Log(ctx, a)
	return nil
}

// Run starts the app and blocks until a shutdown signal or ctx ends, then
// stops it.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	a.WaitForSignal(ctx)
	return a.Stop()
}

// RunTask starts the app, runs task and stops the app when the task returns.
// SIGINT and SIGTERM cancel the task's context.
//
//	app.RunTask(ctx, func(ctx context.Context) error {
//	    _, err := client.Fetch[Video](ctx, app.Client, endpoint.New("/videos/123"))
//	    return err
//	})
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)
	if stopErr := a.Stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// WaitForSignal blocks until an OS interrupt/term signal or context cancellation.
func (a *App) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Stop runs the stop hooks, closes the session to new work, waits for
// pending requests and stops every component, all within the graceful
// timeout. Requests still pending at the deadline are cancelled.
func (a *App) Stop() error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.Fields(logger.FieldError, err.Error()))
		shutdownErr = err
	}

	a.drain(ctx)

	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}

func (a *App) drain(ctx context.Context) {
	a.Client.Invalidate(false)
	select {
	case <-a.Client.Idle():
	case <-ctx.Done():
		a.Logger.Warn("Cancelling pending requests at shutdown deadline",
			logger.Fields("pending", a.Client.Pending()))
		a.Client.Invalidate(true)
		a.Client.Wait()
	}
}
