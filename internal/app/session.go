package app

import (
	"context"
	"errors"
	"fmt"

	"kubel/internal/config"
	"kubel/internal/kubectl"
	"kubel/internal/ledger"
	"kubel/internal/process"
	"kubel/pkg/logging"
)

// StartProxy returns the session proxy, spawning it if needed, and its port.
func (a *Application) StartProxy(ctx context.Context) (*process.Handle, int, error) {
	h, err := a.ledger.GetOrCreateProxy(ctx)
	if err != nil {
		return nil, 0, err
	}
	_, port := a.ledger.Proxy()
	return h, port, nil
}

// StopProxy kills the session proxy. It reports whether one was running.
func (a *Application) StopProxy() bool {
	return a.ledger.ReleaseProxy()
}

// Watch starts a poller for resource and hands it to the ledger. Without
// force, a live poller makes Watch fail with ledger.ErrAlreadyRunning before
// anything is spawned.
func (a *Application) Watch(ctx context.Context, resource string, force bool) (*process.Handle, error) {
	resource = kubectl.NormalizeResource(resource)
	if resource == "" {
		return nil, fmt.Errorf("resource name must not be empty")
	}
	if !force {
		if existing := a.ledger.GetPoller(resource); existing.Alive() {
			return nil, &ledger.AlreadyRunningError{Resource: resource, PID: existing.PID()}
		}
	}

	h, err := a.pollers.SpawnPoller(ctx, resource)
	if err != nil {
		return nil, fmt.Errorf("failed to start poller for %s: %w", resource, err)
	}
	h.SetOnExit(func(h *process.Handle, err error) {
		logging.Warn("App", "poller for %s (pid %d) exited: %v %v", resource, h.PID(), err, h.Output().Tail(3))
	})

	if err := a.ledger.SetPoller(resource, h, force); err != nil {
		// lost a race with another Watch
		process.KillQuietly(h)
		return nil, err
	}
	logging.Info("App", "Watching %s (pid %d)", resource, h.PID())
	return h, nil
}

// Release stops the poller for resource.
func (a *Application) Release(resource string) (string, bool) {
	return a.ledger.ReleasePoller(kubectl.NormalizeResource(resource))
}

// ReleaseAll stops every poller.
func (a *Application) ReleaseAll() []string {
	return a.ledger.ReleaseAll()
}

// Refresh releases every live poller and starts a fresh one for each. The
// returned slice lists the resources that were restarted successfully.
func (a *Application) Refresh(ctx context.Context) ([]string, error) {
	var (
		restarted []string
		errs      []error
	)
	for _, resource := range a.ledger.ReleaseAll() {
		if _, err := a.Watch(ctx, resource, false); err != nil {
			errs = append(errs, err)
			continue
		}
		restarted = append(restarted, resource)
	}
	return restarted, errors.Join(errs...)
}

// Output returns the last n lines captured from resource's poller; n <= 0
// returns everything buffered.
func (a *Application) Output(resource string, n int) ([]string, error) {
	resource = kubectl.NormalizeResource(resource)
	h := a.ledger.GetPoller(resource)
	if h == nil {
		return nil, fmt.Errorf("no poller tracked for %s", resource)
	}
	return h.Output().Tail(n), nil
}

// Status is a snapshot of everything the session tracks.
func (a *Application) Status() ledger.Snapshot {
	return a.ledger.Snapshot()
}

// Shutdown releases every child process and drops the process-wide ledger.
func (a *Application) Shutdown() {
	released := ledger.Shutdown()
	logging.Info("App", "Shutdown released %d poller(s)", len(released))
	if a.config != nil && a.config.EditorMode {
		logging.CloseEditorChannel()
	}
}

// ProxyStatus is the proxy slot plus a fresh readiness verdict.
type ProxyStatus struct {
	Running   bool   `json:"running"`
	PID       int    `json:"pid,omitempty"`
	Port      int    `json:"port"`
	Ready     bool   `json:"ready"`
	Error     string `json:"error,omitempty"`
	Context   string `json:"context,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

// ProxyStatus reports the tracked proxy and probes /readyz and /livez once
// when one is running.
func (a *Application) ProxyStatus(ctx context.Context) ProxyStatus {
	st := ProxyStatus{Port: a.ledger.ProxyPort()}
	if kc, err := a.KubeContext(); err == nil {
		st.Context, st.Namespace = kc.Context, kc.Namespace
	} else {
		logging.Debug("App", "kube context unavailable: %v", err)
	}

	h, port := a.ledger.Proxy()
	if h == nil {
		return st
	}
	st.Running, st.PID, st.Port = h.Alive(), h.PID(), port

	ready, err := a.ledger.CheckProxy(ctx)
	st.Ready = ready
	if err != nil {
		st.Error = err.Error()
	}
	return st
}

// PollerStatus reports the entry for resource. The second result is false
// when the resource was never watched.
func (a *Application) PollerStatus(resource string) (ledger.ProcessStatus, bool) {
	resource = kubectl.NormalizeResource(resource)
	for _, st := range a.ledger.Snapshot().Pollers {
		if st.Name == resource {
			return st, true
		}
	}
	return ledger.ProcessStatus{}, false
}

// KubeContext resolves the context and namespace kubectl children will run
// against. Explicit config values win over the kubeconfig's current context.
func (a *Application) KubeContext() (kubectl.KubeContext, error) {
	var kcfg config.KubectlConfig
	if a.config != nil && a.config.KubelConfig != nil {
		kcfg = a.config.KubelConfig.Kubectl
	}
	kc, err := kubectl.CurrentContext(kcfg.Kubeconfig)
	if err != nil && kcfg.Context == "" {
		return kubectl.KubeContext{}, err
	}
	if kcfg.Context != "" {
		kc.Context = kcfg.Context
	}
	if kcfg.Namespace != "" {
		kc.Namespace = kcfg.Namespace
	}
	return kc, nil
}
