package process

import (
	"errors"
	"fmt"
	"time"

	"kubel/pkg/logging"
)

// reapGrace is how long KillQuietly waits for the OS to reap a killed child.
var reapGrace = 2 * time.Second

var errNotStarted = errors.New("process never started")

// KillQuietly tears h down on a best-effort basis. The exit callback is
// detached and the query-on-exit flag cleared first, so a late exit
// notification cannot run application logic. Terminate, reap and closing the
// output then run independently: a failure or panic in one is logged at
// debug level and does not stop the others. A nil handle is a no-op.
func KillQuietly(h *Handle) {
	if h == nil {
		return
	}

	h.mu.Lock()
	h.onExit = nil
	h.queryOnExit = false
	h.mu.Unlock()

	quietly(h, "terminate", h.terminate)
	quietly(h, "reap", h.reap)
	quietly(h, "close output", h.closeOutput)
}

func quietly(h *Handle, step string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Debug("Process", "%s %s: recovered: %v", step, h.name, r)
		}
	}()
	if err := fn(); err != nil {
		logging.Debug("Process", "%s %s: %v", step, h.name, err)
	}
}

func (h *Handle) terminate() error {
	if h.cmd == nil || h.cmd.Process == nil {
		return errNotStarted
	}
	if !h.Alive() {
		return nil
	}
	return killProcessGroup(h.cmd)
}

func (h *Handle) reap() error {
	if h.done == nil {
		return errNotStarted
	}
	select {
	case <-h.done:
		return nil
	case <-time.After(reapGrace):
		return fmt.Errorf("pid %d still running after %s", h.PID(), reapGrace)
	}
}

func (h *Handle) closeOutput() error {
	if h.output == nil {
		return nil
	}
	if err := h.output.Close(); err != nil && !errors.Is(err, ErrSinkClosed) {
		return err
	}
	return nil
}
