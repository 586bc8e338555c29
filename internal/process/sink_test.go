package process

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink_SplitsLinesAcrossWrites(t *testing.T) {
	s := NewSink(10)

	_, err := s.Write([]byte("first\nsec"))
	require.NoError(t, err)
	_, err = s.Write([]byte("ond\r\nthird"))
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, s.Lines())

	require.NoError(t, s.Close())
	assert.Equal(t, []string{"first", "second", "third"}, s.Lines())
}

func TestSink_RingEvictsOldest(t *testing.T) {
	s := NewSink(3)
	for _, l := range []string{"a", "b", "c", "d", "e"} {
		s.Write([]byte(l + "\n"))
	}

	assert.Equal(t, []string{"c", "d", "e"}, s.Lines())
	assert.Equal(t, []string{"d", "e"}, s.Tail(2))
	assert.Equal(t, []string{"c", "d", "e"}, s.Tail(10))
	assert.Equal(t, 3, s.Len())
}

func TestSink_WriteAfterClose(t *testing.T) {
	s := NewSink(0)
	require.NoError(t, s.Close())
	assert.True(t, s.Closed())

	n, err := s.Write([]byte("late\n"))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, ErrSinkClosed)
	assert.ErrorIs(t, s.Close(), ErrSinkClosed)
}

func TestSink_Follow(t *testing.T) {
	s := NewSink(10)
	s.Write([]byte("before\n"))

	lines, cancel := s.Follow(4)
	defer cancel()

	s.Write([]byte("after\n"))
	select {
	case l := <-lines:
		assert.Equal(t, "after", l)
	case <-time.After(time.Second):
		t.Fatal("follower did not receive line")
	}

	require.NoError(t, s.Close())
	_, open := <-lines
	assert.False(t, open, "follower channel should close with the sink")

	// cancel after close must not panic
	assert.NotPanics(t, cancel)
}

func TestSink_FollowAfterClose(t *testing.T) {
	s := NewSink(10)
	s.Close()

	lines, cancel := s.Follow(1)
	defer cancel()
	_, open := <-lines
	assert.False(t, open)
}
