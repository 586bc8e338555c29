package api

import (
	"context"

	"kubel/internal/app"
	"kubel/internal/ledger"
	"kubel/internal/process"
)

// Session is the command layer the tools delegate to; *app.Application
// implements it.
type Session interface {
	StartProxy(ctx context.Context) (*process.Handle, int, error)
	StopProxy() bool
	Watch(ctx context.Context, resource string, force bool) (*process.Handle, error)
	Release(resource string) (string, bool)
	ReleaseAll() []string
	Refresh(ctx context.Context) ([]string, error)
	Output(resource string, n int) ([]string, error)
	Status() ledger.Snapshot
	ProxyStatus(ctx context.Context) app.ProxyStatus
	PollerStatus(resource string) (ledger.ProcessStatus, bool)
}
