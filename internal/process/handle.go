package process

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"kubel/pkg/logging"
)

// For mocking in tests
var execCommand = exec.Command

// waitDelay bounds how long Wait keeps copying output after the child exits,
// e.g. when a grandchild still holds the pipe.
const waitDelay = time.Second

// Command is a fully built argv plus extra environment entries.
type Command struct {
	Binary string
	Args   []string
	Env    []string // appended to the parent environment
}

func (c Command) String() string {
	return strings.TrimSpace(c.Binary + " " + strings.Join(c.Args, " "))
}

// ExitFunc is invoked once after the OS reaps the child.
type ExitFunc func(h *Handle, err error)

// Handle is an owned child process and its output sink.
type Handle struct {
	id        string
	name      string
	command   Command
	cmd       *exec.Cmd
	output    *Sink
	startedAt time.Time
	done      chan struct{}

	mu          sync.Mutex
	onExit      ExitFunc
	queryOnExit bool
	exitErr     error
}

// Spawn starts c as a child named name (e.g. "proxy" or "pods"). stdout
// and stderr both land in the returned handle's Output sink.
func Spawn(name string, c Command, maxLines int) (*Handle, error) {
	cmd := execCommand(c.Binary, c.Args...)
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	setProcessGroup(cmd)

	sink := NewSink(maxLines)
	// Same writer for both streams, so exec merges them into one pipe.
	cmd.Stdout = sink
	cmd.Stderr = sink
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		sink.Close()
		return nil, fmt.Errorf("failed to start %q: %w", c.String(), err)
	}

	h := &Handle{
		id:          uuid.NewString(),
		name:        name,
		command:     c,
		cmd:         cmd,
		output:      sink,
		startedAt:   time.Now(),
		done:        make(chan struct{}),
		queryOnExit: true,
	}
	logging.Debug("Process", "started %s (pid %d): %s", name, h.PID(), c.String())

	go h.wait()
	return h, nil
}

func (h *Handle) wait() {
	err := h.cmd.Wait()

	h.mu.Lock()
	h.exitErr = err
	cb := h.onExit
	h.onExit = nil
	h.mu.Unlock()

	close(h.done)
	logging.Debug("Process", "%s (pid %d) exited: %v", h.name, h.PID(), err)

	if cb != nil {
		cb(h, err)
	}
}

// ID is a unique identity for the handle, stable for its lifetime. Display
// layers key their buffers by it.
func (h *Handle) ID() string { return h.id }

func (h *Handle) Name() string { return h.name }

func (h *Handle) Command() Command { return h.command }

func (h *Handle) StartedAt() time.Time { return h.startedAt }

// Output returns the merged stdout/stderr sink.
func (h *Handle) Output() *Sink { return h.output }

// PID returns the OS process id, or 0 for a nil handle.
func (h *Handle) PID() int {
	if h == nil || h.cmd == nil || h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

// Alive reports whether the child has not yet been reaped. A nil handle is
// never alive.
func (h *Handle) Alive() bool {
	if h == nil {
		return false
	}
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// Done is closed once the child has been reaped.
func (h *Handle) Done() <-chan struct{} { return h.done }

// ExitErr returns the error from Wait; meaningful only after Done.
func (h *Handle) ExitErr() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitErr
}

// SetOnExit installs the exit callback, replacing any previous one. It has
// no effect once the child has exited.
func (h *Handle) SetOnExit(fn ExitFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onExit = fn
}

// QueryOnExit reports whether the host should ask before exiting while this
// child runs.
func (h *Handle) QueryOnExit() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.queryOnExit
}

func (h *Handle) SetQueryOnExit(query bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queryOnExit = query
}

func (h *Handle) String() string {
	if h == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s[pid=%d]", h.name, h.PID())
}
