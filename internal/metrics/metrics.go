package metrics

// Collector receives ledger and process lifecycle events.
type Collector interface {
	// ProcessSpawned records a child start; kind is "proxy" or "poller".
	ProcessSpawned(kind string)

	// ProcessKilled records a KillQuietly call against a live child.
	ProcessKilled(kind string)

	// ProbeAttempt records one readiness probe and its outcome.
	ProbeAttempt(path string, outcome string)

	// ProxyStartFailed records a proxy that never became ready.
	ProxyStartFailed()

	// TrackedPollers records how many pollers are currently live.
	TrackedPollers(n int)
}

type noopCollector struct{}

func (noopCollector) ProcessSpawned(kind string)               {}
func (noopCollector) ProcessKilled(kind string)                {}
func (noopCollector) ProbeAttempt(path string, outcome string) {}
func (noopCollector) ProxyStartFailed()                        {}
func (noopCollector) TrackedPollers(n int)                     {}

// NewNoop returns a Collector that discards everything.
func NewNoop() Collector {
	return noopCollector{}
}
