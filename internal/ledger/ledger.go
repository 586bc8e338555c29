package ledger

import (
	"context"
	"net/http"
	"sync"
	"time"

	"kubel/internal/config"
	"kubel/internal/kubectl"
	"kubel/internal/metrics"
	"kubel/internal/probe"
	"kubel/internal/process"
	"kubel/internal/readiness"
	"kubel/pkg/logging"
)

const (
	readyzPath = "readyz"
	livezPath  = "livez"
)

// Spawner starts the proxy child bound to port.
type Spawner interface {
	SpawnProxy(ctx context.Context, port int) (*process.Handle, error)
}

// EndpointWaiter is satisfied by *readiness.Waiter.
type EndpointWaiter interface {
	WaitForEndpoint(ctx context.Context, record *process.PortedProcess, path string, opts ...readiness.Option) (int, error)
}

// Ledger owns the proxy record and the per-resource poller handles.
type Ledger struct {
	mu      sync.Mutex
	proxy   *process.PortedProcess
	pollers map[string]*process.Handle
	order   []string // insertion order of pollers keys

	proxyPort int
	spawner   Spawner
	waiter    EndpointWaiter
	metrics   metrics.Collector
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithSpawner sets how the proxy child is started.
func WithSpawner(s Spawner) Option {
	return func(l *Ledger) { l.spawner = s }
}

// WithWaiter sets the readiness waiter used for readyz/livez.
func WithWaiter(w EndpointWaiter) Option {
	return func(l *Ledger) { l.waiter = w }
}

// WithProxyPort sets the port the proxy is spawned on.
func WithProxyPort(port int) Option {
	return func(l *Ledger) { l.proxyPort = port }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m metrics.Collector) Option {
	return func(l *Ledger) { l.metrics = m }
}

// New creates a ledger. Unset options default to a plain `kubectl` spawner,
// the default proxy port and a 5x2s readiness budget.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		pollers:   make(map[string]*process.Handle),
		proxyPort: config.DefaultProxyPort,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.metrics == nil {
		l.metrics = metrics.NewNoop()
	}
	if l.spawner == nil {
		l.spawner = kubectl.NewSpawner(kubectl.NewBuilder(config.KubectlConfig{}), process.DefaultMaxLines)
	}
	if l.waiter == nil {
		w := readiness.NewWaiter(probe.NewClient(config.DefaultProbeTimeout))
		w.Metrics = l.metrics
		l.waiter = w
	}
	return l
}

// ProxyPort is the port a new proxy will be bound to.
func (l *Ledger) ProxyPort() int {
	return l.proxyPort
}

// IsProxyReady probes the tracked proxy: readyz must answer 200, then livez
// must answer 200. A non-200 answer is (false, nil). Failing to get any
// answer within the retry budget is returned as an error. Without a tracked
// proxy the result is (false, nil).
func (l *Ledger) IsProxyReady(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isProxyReadyLocked(ctx)
}

func (l *Ledger) isProxyReadyLocked(ctx context.Context) (bool, error) {
	if l.proxy == nil {
		return false, nil
	}
	for _, path := range []string{readyzPath, livezPath} {
		code, err := l.waiter.WaitForEndpoint(ctx, l.proxy, path, readiness.UntilStatus(http.StatusOK))
		if err != nil {
			return false, err
		}
		if code != http.StatusOK {
			logging.Debug("Ledger", "proxy %s answered %d", path, code)
			return false, nil
		}
	}
	return true, nil
}

// CheckProxy probes the tracked proxy once per endpoint: readyz, then livez,
// each must answer 200. Unlike IsProxyReady it does not retry and does not
// hold the ledger lock while probing, so status queries never stall release
// or shutdown. Without a tracked proxy the result is (false, nil).
func (l *Ledger) CheckProxy(ctx context.Context) (bool, error) {
	l.mu.Lock()
	if l.proxy == nil || l.proxy.Process == nil {
		l.mu.Unlock()
		return false, nil
	}
	rec := &process.PortedProcess{Process: l.proxy.Process, Port: l.proxy.Port}
	l.mu.Unlock()

	for _, path := range []string{readyzPath, livezPath} {
		code, err := l.waiter.WaitForEndpoint(ctx, rec, path, readiness.MaxAttempts(1))
		if err != nil {
			return false, err
		}
		if code != http.StatusOK {
			return false, nil
		}
	}
	return true, nil
}

// GetOrCreateProxy returns the tracked proxy as-is, without re-probing it.
// Otherwise it spawns one on the configured port and returns it once both
// readiness endpoints answer 200. Any failure, including a readiness
// timeout, kills the child, clears the slot and returns a *ProxyStartError.
func (l *Ledger) GetOrCreateProxy(ctx context.Context) (*process.Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.proxy != nil && l.proxy.Process != nil {
		return l.proxy.Process, nil
	}

	port := l.proxyPort
	logging.Info("Ledger", "Starting kubectl proxy on port %d", port)
	h, err := l.spawner.SpawnProxy(ctx, port)
	if err != nil {
		l.metrics.ProxyStartFailed()
		return nil, &ProxyStartError{Port: port, Err: err}
	}

	rec := &process.PortedProcess{Process: h, Port: port}
	l.proxy = rec
	h.SetOnExit(l.forgetProxy(rec))

	ready, err := l.isProxyReadyLocked(ctx)
	if err == nil && !ready {
		err = errNotReady
	}
	if err != nil {
		logging.Error("Ledger", err, "kubectl proxy on port %d did not become ready", port)
		process.KillQuietly(h)
		l.metrics.ProcessKilled("proxy")
		l.metrics.ProxyStartFailed()
		l.proxy = nil
		rec.Clear()
		return nil, &ProxyStartError{Port: port, Err: err}
	}

	logging.Info("Ledger", "kubectl proxy ready on port %d (pid %d)", port, h.PID())
	return h, nil
}

// forgetProxy clears the slot when the proxy dies on its own.
func (l *Ledger) forgetProxy(rec *process.PortedProcess) process.ExitFunc {
	return func(h *process.Handle, err error) {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.proxy != rec {
			return
		}
		logging.Warn("Ledger", "kubectl proxy (pid %d) exited: %v", h.PID(), err)
		l.proxy = nil
		rec.Clear()
	}
}

// Proxy returns the tracked proxy handle and its port, or (nil, 0).
func (l *Ledger) Proxy() (*process.Handle, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.proxy == nil {
		return nil, 0
	}
	return l.proxy.Process, l.proxy.Port
}

// ReleaseProxy kills the tracked proxy and clears the slot. It reports
// whether there was anything to release.
func (l *Ledger) ReleaseProxy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.proxy == nil {
		return false
	}
	rec := l.proxy
	l.proxy = nil
	if rec.Process.Alive() {
		l.metrics.ProcessKilled("proxy")
	}
	process.KillQuietly(rec.Process)
	rec.Clear()
	logging.Info("Ledger", "Released kubectl proxy")
	return true
}

// GetPoller returns the handle tracked for resource, or nil. It never spawns.
func (l *Ledger) GetPoller(resource string) *process.Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pollers[resource]
}

// IsPollerLive reports whether resource has a tracked, running poller.
func (l *Ledger) IsPollerLive(resource string) bool {
	return l.GetPoller(resource).Alive()
}

// SetPoller records h as the poller for resource. If a live poller is
// already tracked, SetPoller fails with *AlreadyRunningError unless force is
// set, in which case the old process is killed first. Dead or released
// entries are overwritten silently.
func (l *Ledger) SetPoller(resource string, h *process.Handle, force bool) error {
	if resource == "" {
		return errEmptyResource
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing := l.pollers[resource]; existing.Alive() && existing != h {
		if !force {
			return &AlreadyRunningError{Resource: resource, PID: existing.PID()}
		}
		logging.Info("Ledger", "Replacing poller for %s (pid %d)", resource, existing.PID())
		process.KillQuietly(existing)
		l.metrics.ProcessKilled("poller")
	}

	if _, tracked := l.pollers[resource]; !tracked {
		l.order = append(l.order, resource)
	}
	l.pollers[resource] = h
	l.reportPollersLocked()
	if h.Alive() {
		go l.reportOnExit(h)
	}
	return nil
}

// reportOnExit refreshes the live poller gauge once h is reaped, including
// when it dies on its own.
func (l *Ledger) reportOnExit(h *process.Handle) {
	<-h.Done()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reportPollersLocked()
}

// ReleasePoller kills the poller for resource if it is alive and clears the
// entry, keeping the key. It returns (resource, true) when something was
// tracked and ("", false) otherwise, in which case no process is touched.
func (l *Ledger) ReleasePoller(resource string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	released := l.releaseLocked(resource)
	l.reportPollersLocked()
	if !released {
		return "", false
	}
	return resource, true
}

func (l *Ledger) releaseLocked(resource string) bool {
	h := l.pollers[resource]
	if h == nil {
		return false
	}
	if h.Alive() {
		process.KillQuietly(h)
		l.metrics.ProcessKilled("poller")
	}
	l.pollers[resource] = nil
	logging.Debug("Ledger", "Released poller for %s", resource)
	return true
}

// ReleaseAll releases every tracked poller and returns the resources that
// had something to release, in the order they were first tracked.
func (l *Ledger) ReleaseAll() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var released []string
	for _, resource := range l.order {
		if l.releaseLocked(resource) {
			released = append(released, resource)
		}
	}
	l.reportPollersLocked()
	if len(released) > 0 {
		logging.Info("Ledger", "Released pollers: %v", released)
	}
	return released
}

// Resources lists every key ever tracked, in insertion order.
func (l *Ledger) Resources() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.order...)
}

func (l *Ledger) reportPollersLocked() {
	live := 0
	for _, h := range l.pollers {
		if h.Alive() {
			live++
		}
	}
	l.metrics.TrackedPollers(live)
}

// ProcessStatus describes one tracked child for display.
type ProcessStatus struct {
	Name      string    `json:"name"`
	ID        string    `json:"id,omitempty"`
	PID       int       `json:"pid,omitempty"`
	Port      int       `json:"port,omitempty"`
	Alive     bool      `json:"alive"`
	StartedAt time.Time `json:"startedAt,omitzero"`
}

// Snapshot is a point-in-time view of the ledger.
type Snapshot struct {
	Proxy   *ProcessStatus  `json:"proxy,omitempty"`
	Pollers []ProcessStatus `json:"pollers"`
}

// Snapshot reports the proxy and every poller key in insertion order.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := Snapshot{Pollers: make([]ProcessStatus, 0, len(l.order))}
	if l.proxy != nil && l.proxy.Process != nil {
		st := statusOf("proxy", l.proxy.Process)
		st.Port = l.proxy.Port
		snap.Proxy = &st
	}
	for _, resource := range l.order {
		snap.Pollers = append(snap.Pollers, statusOf(resource, l.pollers[resource]))
	}
	return snap
}

func statusOf(name string, h *process.Handle) ProcessStatus {
	if h == nil {
		return ProcessStatus{Name: name}
	}
	return ProcessStatus{
		Name:      name,
		ID:        h.ID(),
		PID:       h.PID(),
		Alive:     h.Alive(),
		StartedAt: h.StartedAt(),
	}
}
