// Package component defines the lifecycle contract shared by the long-lived
// parts of a Kit (response cache, reachability manager, telemetry) and a
// registry that starts them in order and stops them in reverse.
package component
