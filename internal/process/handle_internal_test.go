package process

import (
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawn_BuildsCommandThroughExecCommand(t *testing.T) {
	var (
		gotName string
		gotArgs []string
	)
	orig := execCommand
	defer func() { execCommand = orig }()
	execCommand = func(name string, args ...string) *exec.Cmd {
		gotName, gotArgs = name, args
		// run no tests and exit 0
		return exec.Command(os.Args[0], "-test.run=^$")
	}

	c := Command{Binary: "kubectl", Args: []string{"proxy", "--port", "8001"}}
	h, err := Spawn("proxy", c, 10)
	require.NoError(t, err)
	defer KillQuietly(h)

	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("child did not exit")
	}
	assert.Equal(t, "kubectl", gotName)
	assert.Equal(t, []string{"proxy", "--port", "8001"}, gotArgs)
	assert.Equal(t, "kubectl proxy --port 8001", c.String())
	assert.Equal(t, c, h.Command())
}

func TestKillQuietly_ZeroHandle(t *testing.T) {
	assert.NotPanics(t, func() { KillQuietly(&Handle{}) })
	assert.NotPanics(t, func() { KillQuietly(nil) })
}

func TestKillQuietly_ClosesOutputWhenEarlierStepsFail(t *testing.T) {
	// never started: terminate and reap both fail
	h := &Handle{name: "x", output: NewSink(10)}
	_, err := h.output.Write([]byte("partial"))
	require.NoError(t, err)

	assert.Error(t, h.terminate())
	assert.Error(t, h.reap())

	KillQuietly(h)
	assert.True(t, h.output.Closed())
	assert.Equal(t, []string{"partial"}, h.output.Lines(), "partial line flushed on close")
}
