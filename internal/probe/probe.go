// Package probe issues single HTTP GET requests against local endpoints and
// classifies the result without treating connection failures as errors.
package probe

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"kubel/pkg/logging"
)

// Outcome classifies a single probe.
type Outcome int

const (
	// Unreachable means no HTTP exchange completed (refused, timeout, DNS).
	Unreachable Outcome = iota
	// NotReady means the server answered with something other than 200.
	NotReady
	// Ready means the server answered 200.
	Ready
)

// String makes Outcome satisfy the fmt.Stringer interface.
func (o Outcome) String() string {
	switch o {
	case Unreachable:
		return "unreachable"
	case NotReady:
		return "not_ready"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Result is the tri-state answer of a probe. StatusCode is zero and Err is
// set only when Outcome is Unreachable.
type Result struct {
	Outcome    Outcome
	StatusCode int
	Err        error
}

// Reached reports whether an HTTP exchange completed.
func (r Result) Reached() bool {
	return r.Outcome != Unreachable
}

// Prober is satisfied by Client; tests substitute scripted implementations.
type Prober interface {
	Probe(ctx context.Context, url string) Result
}

// Client probes with its own non-shared transport.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client whose requests time out after timeout.
func NewClient(timeout time.Duration) *Client {
	c := cleanhttp.DefaultClient()
	c.Timeout = timeout
	return &Client{httpClient: c}
}

// Probe performs one GET against url.
func (c *Client) Probe(ctx context.Context, url string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{Outcome: Unreachable, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Debug("Probe", "GET %s failed: %v", url, err)
		return Result{Outcome: Unreachable, Err: err}
	}
	defer resp.Body.Close()
	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusOK {
		return Result{Outcome: Ready, StatusCode: resp.StatusCode}
	}
	return Result{Outcome: NotReady, StatusCode: resp.StatusCode}
}
