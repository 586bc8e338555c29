package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsLazyAndShared(t *testing.T) {
	t.Cleanup(func() { Shutdown() })

	a := Default()
	b := Default()
	assert.Same(t, a, b)
}

func TestShutdown_ReleasesAndDrops(t *testing.T) {
	l := Init(WithProxyPort(18002))
	h := spawnPoller(t, "pods")
	require.NoError(t, l.SetPoller("pods", h, false))

	released := Shutdown()
	assert.Equal(t, []string{"pods"}, released)
	assert.False(t, h.Alive())

	fresh := Default()
	t.Cleanup(func() { Shutdown() })
	assert.NotSame(t, l, fresh)
	assert.Nil(t, fresh.GetPoller("pods"))
	assert.Equal(t, 8001, fresh.ProxyPort())
}

func TestInit_ShutsDownPrevious(t *testing.T) {
	first := Init()
	h := spawnPoller(t, "pods")
	require.NoError(t, first.SetPoller("pods", h, false))

	second := Init()
	t.Cleanup(func() { Shutdown() })

	assert.NotSame(t, first, second)
	assert.False(t, h.Alive())
	assert.Same(t, second, Default())
}

func TestShutdown_WithoutLedger(t *testing.T) {
	Shutdown()
	assert.Nil(t, Shutdown())
}
