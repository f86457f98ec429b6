// Package nethttp implements transport.Session on net/http.
//
// The transport negotiates HTTP/2 through golang.org/x/net/http2, and
// every exchange passes the session's transport.Guard, which holds the
// optional rate limiter and circuit breaker:
//
//	s, err := nethttp.New(transport.Config{
//		Timeout:        30 * time.Second,
//		CircuitBreaker: transport.DefaultCircuitBreakerConfig("vimeo"),
//	}, nethttp.WithLogger(log))
package nethttp
