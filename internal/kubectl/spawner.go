package kubectl

import (
	"context"

	"kubel/internal/metrics"
	"kubel/internal/process"
)

// Spawner starts kubectl children. It satisfies ledger.Spawner.
type Spawner struct {
	Builder  *Builder
	MaxLines int
	Metrics  metrics.Collector
}

// NewSpawner creates a spawner with a no-op metrics collector.
func NewSpawner(b *Builder, maxLines int) *Spawner {
	return &Spawner{Builder: b, MaxLines: maxLines, Metrics: metrics.NewNoop()}
}

// SpawnProxy starts `kubectl proxy` bound to port.
func (s *Spawner) SpawnProxy(ctx context.Context, port int) (*process.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h, err := process.Spawn("proxy", s.Builder.ProxyCommand(port), s.MaxLines)
	if err != nil {
		return nil, err
	}
	s.Metrics.ProcessSpawned("proxy")
	return h, nil
}

// SpawnPoller starts a watching `kubectl get` for resource.
func (s *Spawner) SpawnPoller(ctx context.Context, resource string) (*process.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cmd, err := s.Builder.PollCommand(resource)
	if err != nil {
		return nil, err
	}
	h, err := process.Spawn(NormalizeResource(resource), cmd, s.MaxLines)
	if err != nil {
		return nil, err
	}
	s.Metrics.ProcessSpawned("poller")
	return h, nil
}
