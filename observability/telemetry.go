package observability

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/kbukum/vimeonet/component"
	"github.com/kbukum/vimeonet/logger"
)

// Providers holds the tracer and meter providers built by Setup.
type Providers struct {
	cfg      Config
	tracer   trace.TracerProvider
	meter    metric.MeterProvider
	shutdown []func(context.Context) error
	log      *logger.Logger
}

var _ component.Component = (*Providers)(nil)

// Setup builds providers for cfg. Nothing is exported until spans or
// measurements are recorded.
func Setup(ctx context.Context, cfg Config, log *logger.Logger) (*Providers, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Providers{cfg: cfg, log: logger.OrNop(log).WithComponent("telemetry")}
	if !cfg.Enabled {
		p.tracer = tracenoop.NewTracerProvider()
		p.meter = metricnoop.NewMeterProvider()
		return p, nil
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}
	tp, err := newTracerProvider(ctx, cfg, res)
	if err != nil {
		return nil, err
	}
	mp, err := newMeterProvider(ctx, cfg, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}
	p.tracer, p.meter = tp, mp
	p.shutdown = []func(context.Context) error{tp.Shutdown, mp.Shutdown}

	p.log.Info("telemetry initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.SampleRate,
		"interval", cfg.MetricInterval.String(),
	))
	return p, nil
}

// TracerProvider returns the tracer provider.
func (p *Providers) TracerProvider() trace.TracerProvider { return p.tracer }

// MeterProvider returns the meter provider.
func (p *Providers) MeterProvider() metric.MeterProvider { return p.meter }

// Enabled reports whether the providers export data.
func (p *Providers) Enabled() bool { return p.cfg.Enabled }

// Install makes the providers the process-wide defaults and enables W3C
// trace context propagation.
func (p *Providers) Install() {
	otel.SetTracerProvider(p.tracer)
	otel.SetMeterProvider(p.meter)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// Name implements component.Component.
func (p *Providers) Name() string { return "telemetry" }

// Start implements component.Component.
func (p *Providers) Start(context.Context) error { return nil }

// Stop flushes and shuts the providers down.
func (p *Providers) Stop(ctx context.Context) error {
	var errs []error
	for _, fn := range p.shutdown {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	p.shutdown = nil
	if err := errors.Join(errs...); err != nil {
		p.log.Warn("telemetry shutdown incomplete", logger.Fields(logger.FieldError, err.Error()))
		return err
	}
	return nil
}

// Health implements component.Component.
func (p *Providers) Health(context.Context) component.Health {
	h := component.Health{Name: p.Name(), Status: component.StatusHealthy}
	if !p.cfg.Enabled {
		h.Message = "disabled"
	}
	return h
}
