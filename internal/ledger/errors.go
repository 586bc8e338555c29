package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning matches every *AlreadyRunningError.
	ErrAlreadyRunning = errors.New("poller already running")
	// ErrProxyStart matches every *ProxyStartError.
	ErrProxyStart = errors.New("proxy failed to start")

	errNotReady      = errors.New("readyz/livez did not return 200")
	errEmptyResource = errors.New("resource name must not be empty")
)

// AlreadyRunningError is returned when a live poller would be replaced
// without force. The existing process is left untouched.
type AlreadyRunningError struct {
	Resource string
	PID      int
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("a poller for %q is already running (pid %d); release it first or force", e.Resource, e.PID)
}

func (e *AlreadyRunningError) Is(target error) bool {
	return target == ErrAlreadyRunning
}

// ProxyStartError is returned when the proxy could not be spawned or never
// became ready. By the time it is returned the child has been killed and the
// proxy slot cleared.
type ProxyStartError struct {
	Port int
	Err  error
}

func (e *ProxyStartError) Error() string {
	return fmt.Sprintf("kubectl proxy on port %d failed to start: %v", e.Port, e.Err)
}

func (e *ProxyStartError) Unwrap() error {
	return e.Err
}

func (e *ProxyStartError) Is(target error) bool {
	return target == ErrProxyStart
}
