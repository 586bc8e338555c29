package api

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kubel/internal/app"
	"kubel/internal/ledger"
	"kubel/internal/process"
	"kubel/internal/process/processtest"
)

// TestHelperProcess is not a real test. It's the child side of processtest.Command.
func TestHelperProcess(t *testing.T) {
	processtest.RunHelper()
}

type fakeSession struct {
	watchErr   error
	proxyErr   error
	released   []string
	lastForce  bool
	lastLines  int
	handles    []*process.Handle
	refreshErr error
}

func (f *fakeSession) spawn(t *testing.T, name string) *process.Handle {
	h, err := process.Spawn(name, processtest.Command(processtest.ModeSleep), 10)
	require.NoError(t, err)
	f.handles = append(f.handles, h)
	return h
}

func (f *fakeSession) cleanup() {
	for _, h := range f.handles {
		process.KillQuietly(h)
	}
}

type sessionAdapter struct {
	t *testing.T
	*fakeSession
}

func (s sessionAdapter) StartProxy(ctx context.Context) (*process.Handle, int, error) {
	if s.proxyErr != nil {
		return nil, 0, s.proxyErr
	}
	return s.spawn(s.t, "proxy"), 8001, nil
}

func (s sessionAdapter) StopProxy() bool { return true }

func (s sessionAdapter) Watch(ctx context.Context, resource string, force bool) (*process.Handle, error) {
	s.lastForce = force
	if s.watchErr != nil {
		return nil, s.watchErr
	}
	return s.spawn(s.t, resource), nil
}

func (s sessionAdapter) Release(resource string) (string, bool) {
	if resource == "pods" {
		return resource, true
	}
	return "", false
}

func (s sessionAdapter) ReleaseAll() []string { return s.released }

func (s sessionAdapter) Refresh(ctx context.Context) ([]string, error) {
	return s.released, s.refreshErr
}

func (s sessionAdapter) Output(resource string, n int) ([]string, error) {
	s.lastLines = n
	if resource != "pods" {
		return nil, errors.New("no poller tracked for " + resource)
	}
	return []string{"NAME READY", "web-1 1/1"}, nil
}

func (s sessionAdapter) Status() ledger.Snapshot {
	return ledger.Snapshot{Pollers: []ledger.ProcessStatus{{Name: "pods", PID: 42, Alive: true}}}
}

func (s sessionAdapter) ProxyStatus(ctx context.Context) app.ProxyStatus {
	return app.ProxyStatus{Running: true, PID: 99, Port: 8001, Ready: true, Context: "kind-dev"}
}

func (s sessionAdapter) PollerStatus(resource string) (ledger.ProcessStatus, bool) {
	if resource != "pods" {
		return ledger.ProcessStatus{}, false
	}
	return ledger.ProcessStatus{Name: "pods", PID: 42, Alive: true}, true
}

func newTestServer(t *testing.T) (*Server, *fakeSession) {
	t.Helper()
	fake := &fakeSession{}
	t.Cleanup(fake.cleanup)
	s, err := NewServer(sessionAdapter{t: t, fakeSession: fake}, "test")
	require.NoError(t, err)
	return s, fake
}

func request(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "Expected TextContent")
	return text.Text
}

func TestNewServer_RequiresSession(t *testing.T) {
	_, err := NewServer(nil, "test")
	assert.ErrorIs(t, err, ErrSessionRequired)
}

func TestServerTools(t *testing.T) {
	s, _ := newTestServer(t)
	names := map[string]bool{}
	for _, st := range s.serverTools() {
		names[st.Tool.Name] = true
		assert.NotNil(t, st.Handler, st.Tool.Name)
	}
	for _, want := range []string{"proxy_start", "proxy_stop", "proxy_status", "status", "poller_status", "poller_start", "poller_output", "poller_release", "pollers_release_all", "pollers_refresh"} {
		assert.True(t, names[want], want)
	}
	assert.NotNil(t, s.MCPServer())
}

func TestHandleProxyStart(t *testing.T) {
	s, fake := newTestServer(t)

	result, err := s.handleProxyStart(context.Background(), request("proxy_start", nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var got handleInfo
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &got))
	assert.Equal(t, 8001, got.Port)
	assert.Equal(t, fake.handles[0].PID(), got.PID)

	fake.proxyErr = &ledger.ProxyStartError{Port: 8001, Err: errors.New("timed out")}
	result, err = s.handleProxyStart(context.Background(), request("proxy_start", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "port 8001 failed to start")
}

func TestHandlePollerStart(t *testing.T) {
	s, fake := newTestServer(t)

	result, err := s.handlePollerStart(context.Background(), request("poller_start", map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = s.handlePollerStart(context.Background(), request("poller_start", map[string]interface{}{
		"resource": "pods",
		"force":    true,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.True(t, fake.lastForce)
	assert.Contains(t, textOf(t, result), `"resource": "pods"`)

	fake.watchErr = &ledger.AlreadyRunningError{Resource: "pods", PID: 7}
	result, err = s.handlePollerStart(context.Background(), request("poller_start", map[string]interface{}{"resource": "pods"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "already running")
}

func TestHandlePollerOutput(t *testing.T) {
	s, fake := newTestServer(t)

	result, err := s.handlePollerOutput(context.Background(), request("poller_output", map[string]interface{}{"resource": "pods"}))
	require.NoError(t, err)
	assert.Equal(t, defaultOutputLines, fake.lastLines)

	var lines []string
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &lines))
	assert.Equal(t, []string{"NAME READY", "web-1 1/1"}, lines)

	result, err = s.handlePollerOutput(context.Background(), request("poller_output", map[string]interface{}{"resource": "jobs", "lines": 5}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, 5, fake.lastLines)
}

func TestHandlePollerRelease(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handlePollerRelease(context.Background(), request("poller_release", map[string]interface{}{"resource": "pods"}))
	require.NoError(t, err)
	assert.Contains(t, textOf(t, result), `"released": "pods"`)

	result, err = s.handlePollerRelease(context.Background(), request("poller_release", map[string]interface{}{"resource": "jobs"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, textOf(t, result), "No poller tracked for jobs")
}

func TestHandleReleaseAllAndRefresh(t *testing.T) {
	s, fake := newTestServer(t)

	result, err := s.handleReleaseAll(context.Background(), request("pollers_release_all", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"released": []}`, textOf(t, result))

	fake.released = []string{"pods", "deployments"}
	result, err = s.handleReleaseAll(context.Background(), request("pollers_release_all", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"released": ["pods", "deployments"]}`, textOf(t, result))

	result, err = s.handleRefresh(context.Background(), request("pollers_refresh", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"restarted": ["pods", "deployments"]}`, textOf(t, result))

	fake.refreshErr = errors.New("failed to start poller for pods")
	result, err = s.handleRefresh(context.Background(), request("pollers_refresh", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleStatus(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleStatus(context.Background(), request("status", nil))
	require.NoError(t, err)

	var snap ledger.Snapshot
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &snap))
	require.Len(t, snap.Pollers, 1)
	assert.Equal(t, 42, snap.Pollers[0].PID)
	assert.Nil(t, snap.Proxy)
}

func TestHandleProxyStatus(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleProxyStatus(context.Background(), request("proxy_status", nil))
	require.NoError(t, err)

	var st app.ProxyStatus
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &st))
	assert.True(t, st.Ready)
	assert.Equal(t, 8001, st.Port)
	assert.Equal(t, "kind-dev", st.Context)
}

func TestHandlePollerStatus(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handlePollerStatus(context.Background(), request("poller_status", map[string]interface{}{"resource": "pods"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, textOf(t, result), `"pid": 42`)

	result, err = s.handlePollerStatus(context.Background(), request("poller_status", map[string]interface{}{"resource": "jobs"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "no poller tracked for jobs")
}
