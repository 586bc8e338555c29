// Package process owns the child processes kubel spawns.
//
// A Handle wraps one OS child started in its own process group, with stdout
// and stderr merged into a single bounded Sink. Handles report liveness,
// carry an optional exit callback, and are torn down with KillQuietly, which
// never reports failure: terminating something that is already gone is not
// an error.
//
// PortedProcess pairs a Handle with the local TCP port the child is
// expected to bind, which is what readiness probing needs.
package process
