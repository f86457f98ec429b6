// Package restysession implements transport.Session on go-resty/resty/v2.
//
// It follows the same contract as transport/nethttp: one callback per
// operation, cancellation through the returned task, atomic downloads and
// admission through a transport.Guard. Resty's own retry support stays
// disabled because the client never retries on its own.
package restysession
