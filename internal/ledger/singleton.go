package ledger

import "sync"

var (
	defaultMu     sync.Mutex
	defaultLedger *Ledger
)

// Default returns the process-wide ledger, creating it with default options
// on first use.
func Default() *Ledger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLedger == nil {
		defaultLedger = New()
	}
	return defaultLedger
}

// Init installs a configured process-wide ledger. A previously installed
// ledger is shut down first.
func Init(opts ...Option) *Ledger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLedger != nil {
		shutdown(defaultLedger)
	}
	defaultLedger = New(opts...)
	return defaultLedger
}

// Shutdown releases every poller and the proxy of the process-wide ledger
// and drops it. It returns the released poller resources.
func Shutdown() []string {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLedger == nil {
		return nil
	}
	released := shutdown(defaultLedger)
	defaultLedger = nil
	return released
}

func shutdown(l *Ledger) []string {
	released := l.ReleaseAll()
	l.ReleaseProxy()
	return released
}
