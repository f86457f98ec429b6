// Package reachability reports whether the API host can be reached and over
// which kind of interface.
//
// A Source supplies raw Flags, either from the platform or from ProbeSource,
// which dials the host periodically. Manager turns flags into a Status, answers
// the IsReachable queries and notifies a listener. Repeated statuses are
// notified only once.
package reachability
