// Package resilience guards the transports and the disk cache.
//
//   - CircuitBreaker fails fast after repeated transport or server failures.
//     Its Allow/Record split suits asynchronous callers that learn the
//     outcome in a callback rather than a return value.
//   - RateLimiter paces outgoing requests with a token bucket from
//     golang.org/x/time/rate.
//   - Bulkhead bounds concurrency of fire-and-forget background work
//     (Go, Wait) and reports its occupancy (InUse).
//
// Nothing here retries: the request pipeline delivers one outcome per
// submission and leaves retries to the caller.
package resilience
