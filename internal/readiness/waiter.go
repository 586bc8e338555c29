// Package readiness decides whether a locally bound child server is up by
// probing one of its HTTP endpoints under a bounded retry budget.
package readiness

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"kubel/internal/metrics"
	"kubel/internal/probe"
	"kubel/internal/process"
	"kubel/pkg/logging"
)

const (
	DefaultRetryCount = 5
	DefaultRetryWait  = 2 * time.Second
)

// ErrTimeout matches every *TimeoutError.
var ErrTimeout = errors.New("endpoint did not respond")

// TimeoutError is returned when no probe completed an HTTP exchange within
// the retry budget.
type TimeoutError struct {
	Port     int
	Path     string
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no response from http://localhost:%d/%s after %d attempts", e.Port, e.Path, e.Attempts)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// Waiter wraps a prober with a fixed-interval retry budget.
type Waiter struct {
	RetryCount int
	RetryWait  time.Duration
	Prober     probe.Prober
	Metrics    metrics.Collector
}

// NewWaiter returns a waiter with the default budget of 5 attempts, 2s apart.
func NewWaiter(p probe.Prober) *Waiter {
	return &Waiter{
		RetryCount: DefaultRetryCount,
		RetryWait:  DefaultRetryWait,
		Prober:     p,
	}
}

type waitOptions struct {
	untilStatus int
	maxAttempts int
}

// Option tunes a single WaitForEndpoint call.
type Option func(*waitOptions)

// UntilStatus keeps retrying while the server answers with any other code.
// When the budget runs out after at least one answer, the last code is
// returned without error.
func UntilStatus(code int) Option {
	return func(o *waitOptions) {
		o.untilStatus = code
	}
}

// MaxAttempts caps the number of probes below the waiter's RetryCount.
// MaxAttempts(1) is a single probe with no sleep.
func MaxAttempts(n int) Option {
	return func(o *waitOptions) {
		o.maxAttempts = n
	}
}

// EndpointURL builds the probe URL for a port and path.
func EndpointURL(port int, path string) string {
	return fmt.Sprintf("http://localhost:%d/%s", port, strings.TrimPrefix(path, "/"))
}

// WaitForEndpoint probes record's port at path until an HTTP exchange
// completes, sleeping RetryWait between attempts. It returns the status code
// of the first completed exchange, whatever its value. If no exchange
// completes within RetryCount attempts it returns a *TimeoutError.
//
// The call blocks for up to RetryCount*RetryWait. ctx cancellation ends the
// wait early with ctx.Err().
func (w *Waiter) WaitForEndpoint(ctx context.Context, record *process.PortedProcess, path string, opts ...Option) (int, error) {
	if record == nil {
		return 0, fmt.Errorf("wait for %s: no process record", path)
	}
	var o waitOptions
	for _, opt := range opts {
		opt(&o)
	}

	attemptsBudget := w.RetryCount
	if o.maxAttempts > 0 && o.maxAttempts < attemptsBudget {
		attemptsBudget = o.maxAttempts
	}
	if attemptsBudget <= 0 {
		attemptsBudget = 1
	}
	port := record.Port
	url := EndpointURL(port, path)
	path = strings.TrimPrefix(path, "/")

	var (
		attempts  int
		responded bool
		lastCode  int
	)
	backoff := wait.Backoff{
		Duration: w.RetryWait,
		Factor:   1.0,
		Steps:    attemptsBudget,
	}
	err := wait.ExponentialBackoffWithContext(ctx, backoff, func(ctx context.Context) (bool, error) {
		attempts++
		res := w.Prober.Probe(ctx, url)
		if w.Metrics != nil {
			w.Metrics.ProbeAttempt(path, res.Outcome.String())
		}
		if !res.Reached() {
			logging.Debug("Readiness", "%s unreachable (attempt %d/%d): %v", url, attempts, attemptsBudget, res.Err)
			return false, nil
		}
		responded = true
		lastCode = res.StatusCode
		if o.untilStatus != 0 && res.StatusCode != o.untilStatus {
			logging.Debug("Readiness", "%s answered %d, want %d (attempt %d/%d)", url, res.StatusCode, o.untilStatus, attempts, attemptsBudget)
			return false, nil
		}
		return true, nil
	})

	if err == nil {
		return lastCode, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return lastCode, fmt.Errorf("wait for %s: %w", url, ctxErr)
	}
	if responded {
		return lastCode, nil
	}
	logging.Debug("Readiness", "giving up on %s: %v", url, err)
	return 0, &TimeoutError{Port: port, Path: path, Attempts: attempts}
}
