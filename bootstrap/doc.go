// Package bootstrap assembles a ready-to-use API client from one
// configuration value: logger, transport session, response cache, secure
// account storage, authentication state, reachability monitoring and
// telemetry.
//
// # Quick Start
//
//	cfg, err := bootstrap.LoadConfig("player")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app, err := bootstrap.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer app.Stop()
//
//	resp, err := client.Fetch[Video](ctx, app.Client, endpoint.New("/videos/123"))
//
// Components are started in registration order and stopped in reverse.
// A persisted account is restored before the client sends anything.
package bootstrap
