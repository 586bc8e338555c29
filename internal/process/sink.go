package process

import (
	"bytes"
	"errors"
	"sync"
)

// DefaultMaxLines bounds a Sink when no explicit size is given.
const DefaultMaxLines = 10000

// ErrSinkClosed is returned by writes after Close.
var ErrSinkClosed = errors.New("output sink closed")

// Sink is a bounded, line-oriented ring buffer capturing a child's output.
// It is safe for concurrent use.
type Sink struct {
	mu        sync.Mutex
	ring      []string
	start     int
	count     int
	partial   []byte
	closed    bool
	followers map[int]chan string
	nextID    int
}

// NewSink creates a sink keeping at most maxLines complete lines.
func NewSink(maxLines int) *Sink {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &Sink{
		ring:      make([]string, maxLines),
		followers: make(map[int]chan string),
	}
}

// Write implements io.Writer. Incomplete trailing data is held until the
// next newline or Close.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrSinkClosed
	}

	data := p
	if len(s.partial) > 0 {
		data = append(s.partial, p...)
		s.partial = nil
	}
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		s.appendLocked(string(bytes.TrimSuffix(data[:i], []byte("\r"))))
		data = data[i+1:]
	}
	if len(data) > 0 {
		s.partial = append([]byte(nil), data...)
	}
	return len(p), nil
}

func (s *Sink) appendLocked(line string) {
	size := len(s.ring)
	if s.count < size {
		s.ring[(s.start+s.count)%size] = line
		s.count++
	} else {
		s.ring[s.start] = line
		s.start = (s.start + 1) % size
	}
	for _, ch := range s.followers {
		select {
		case ch <- line:
		default:
			// slow follower, drop
		}
	}
}

// Lines returns a copy of all buffered lines, oldest first.
func (s *Sink) Lines() []string {
	return s.Tail(0)
}

// Tail returns the last n buffered lines; n <= 0 means all of them.
func (s *Sink) Tail(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 || n > s.count {
		n = s.count
	}
	out := make([]string, 0, n)
	size := len(s.ring)
	for i := s.count - n; i < s.count; i++ {
		out = append(out, s.ring[(s.start+i)%size])
	}
	return out
}

// Len reports how many lines are buffered.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Follow streams lines written after the call. The channel is closed when the
// sink closes or cancel is called. Lines are dropped if the reader falls
// more than buffer lines behind.
func (s *Sink) Follow(buffer int) (<-chan string, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan string, buffer)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.followers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if f, ok := s.followers[id]; ok {
				delete(s.followers, id)
				close(f)
			}
		})
	}
	return ch, cancel
}

// Close flushes any partial line and releases followers. Closing twice
// returns ErrSinkClosed.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	if len(s.partial) > 0 {
		s.appendLocked(string(s.partial))
		s.partial = nil
	}
	s.closed = true
	for id, ch := range s.followers {
		close(ch)
		delete(s.followers, id)
	}
	return nil
}

// Closed reports whether Close has been called.
func (s *Sink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
