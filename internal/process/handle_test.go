package process_test

import (
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kubel/internal/process"
	"kubel/internal/process/processtest"
)

// TestHelperProcess is not a real test. It's the child side of processtest.Command.
func TestHelperProcess(t *testing.T) {
	processtest.RunHelper()
}

func spawnSleeper(t *testing.T) *process.Handle {
	t.Helper()
	h, err := process.Spawn("sleeper", processtest.Command(processtest.ModeSleep), 100)
	require.NoError(t, err)
	t.Cleanup(func() { process.KillQuietly(h) })
	return h
}

func TestSpawn_MergesStdoutAndStderr(t *testing.T) {
	h, err := process.Spawn("echo", processtest.Command(processtest.ModeEcho, "out-1", "err-1", "out-2"), 100)
	require.NoError(t, err)

	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("echo helper did not exit")
	}

	assert.False(t, h.Alive())
	assert.NoError(t, h.ExitErr())
	assert.ElementsMatch(t, []string{"out-1", "err-1", "out-2"}, h.Output().Lines())
	assert.NotEmpty(t, h.ID())
	assert.Equal(t, "echo", h.Name())
}

func TestSpawn_MissingBinary(t *testing.T) {
	_, err := process.Spawn("missing", process.Command{Binary: "/non/existent/kubectl"}, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start")
}

func TestHandle_OnExitFiresWhenChildDiesOnItsOwn(t *testing.T) {
	h := spawnSleeper(t)

	fired := make(chan error, 1)
	h.SetOnExit(func(h *process.Handle, err error) {
		fired <- err
	})

	// kill behind the handle's back, as an OOM killer would
	p, err := os.FindProcess(h.PID())
	require.NoError(t, err)
	require.NoError(t, p.Kill())

	select {
	case err := <-fired:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("exit callback did not fire")
	}
	assert.False(t, h.Alive())
}

func TestKillQuietly_LiveProcess(t *testing.T) {
	h := spawnSleeper(t)
	require.True(t, h.Alive())
	require.True(t, h.QueryOnExit())

	var fired atomic.Bool
	h.SetOnExit(func(*process.Handle, error) { fired.Store(true) })

	process.KillQuietly(h)

	assert.False(t, h.Alive())
	assert.False(t, h.QueryOnExit())
	assert.True(t, h.Output().Closed())
	assert.False(t, fired.Load(), "detached exit callback must not run")
}

func TestKillQuietly_Idempotent(t *testing.T) {
	h := spawnSleeper(t)

	process.KillQuietly(h)
	assert.NotPanics(t, func() { process.KillQuietly(h) })
	assert.False(t, h.Alive())
}

func TestKillQuietly_AlreadyExitedAndClosedSink(t *testing.T) {
	h, err := process.Spawn("exit", processtest.Command(processtest.ModeExit, "0"), 10)
	require.NoError(t, err)
	<-h.Done()
	// a display layer may already have discarded the buffer
	h.Output().Close()

	assert.NotPanics(t, func() { process.KillQuietly(h) })
}

func TestKillQuietly_Nil(t *testing.T) {
	assert.NotPanics(t, func() { process.KillQuietly(nil) })
	var h *process.Handle
	assert.False(t, h.Alive())
	assert.Zero(t, h.PID())
}

func TestPortedProcess(t *testing.T) {
	var empty *process.PortedProcess
	assert.False(t, empty.Alive())

	h := spawnSleeper(t)
	rec := &process.PortedProcess{Process: h, Port: 8001}
	assert.True(t, rec.Alive())

	rec.Clear()
	assert.Nil(t, rec.Process)
	assert.Zero(t, rec.Port)
	assert.False(t, rec.Alive())
}

func TestCommand_String(t *testing.T) {
	c := process.Command{Binary: "kubectl", Args: []string{"proxy", "--port", "8001"}}
	assert.Equal(t, "kubectl proxy --port 8001", c.String())
}
