// Package observability builds the OpenTelemetry tracer and meter providers
// handed to the client and the response cache. Providers are returned to the
// caller rather than installed globally; call Install to opt in.
//
//	p, err := observability.Setup(ctx, cfg, log)
//	defer p.Stop(ctx)
//	c, _ := client.New(clientCfg, session,
//		client.WithTracerProvider(p.TracerProvider()),
//		client.WithMeterProvider(p.MeterProvider()))
//
// A disabled configuration yields no-op providers.
package observability
