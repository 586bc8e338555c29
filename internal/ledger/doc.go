// Package ledger tracks the child processes a kubel session owns: at most one
// `kubectl proxy` and at most one live poller per resource kind.
//
// The ledger is the only owner of the handles it stores. Callers receive
// handles to read output from, but teardown always goes through the ledger
// (ReleasePoller, ReleaseAll, ReleaseProxy) so that the "one live process per
// key" rule holds.
//
// All state sits behind a single mutex. That includes the proxy readiness
// wait, so concurrent GetOrCreateProxy calls never spawn twice; the price is
// that other ledger calls block for up to the readiness budget while a proxy
// is starting.
//
// A process-wide instance is available through Default. Init replaces it
// with a configured one and Shutdown releases everything it tracks.
package ledger
