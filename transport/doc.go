// Package transport defines the capability the request pipeline needs from an
// HTTP stack, and the pieces shared by the concrete adapters.
//
// A Session executes requests, uploads and downloads asynchronously. Every
// operation returns a Task that can cancel it, and every operation invokes its
// callback exactly once, including when it is cancelled or the session has
// been invalidated. The goroutine the callback runs on is unspecified.
//
// Adapters live in subpackages:
//
//	transport/nethttp      net/http with HTTP/2, a rate limiter and a circuit breaker
//	transport/restysession go-resty/resty/v2
//
// Both build on Tracker for invalidation, Guard for admission control and
// WriteFile for atomic downloads.
package transport
