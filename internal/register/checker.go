// Package register implements the registration view model: debounced
// username/email availability checking with stale-result rejection.
package register

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jonesrussell/north-cloud/dashboard/internal/logger"
)

const (
	// DefaultQuietPeriod is how long input must be idle before a check
	// fires. Bounds upstream request volume while the user types.
	DefaultQuietPeriod = 500 * time.Millisecond

	// DefaultMinLength is the minimum input length that can trigger a
	// check at all.
	DefaultMinLength = 3
)

// CheckFunc asks the backend whether a value is available.
type CheckFunc func(ctx context.Context, value string) (bool, error)

// Result is the outcome of one availability check.
type Result struct {
	// Value is the input the check was issued for.
	Value     string
	Available bool
	Err       error
}

// Checker debounces availability checks for a single input field. Each
// input revision resets the quiet timer; only the revision that survives
// the quiet period reaches the backend, and a response is delivered only
// if no newer revision exists by the time it arrives. Staleness is
// enforced by a revision guard, not by cancelling the underlying call.
type Checker struct {
	check    CheckFunc
	onResult func(Result)
	quiet    time.Duration
	minLen   int
	log      logger.Logger

	mu       sync.Mutex
	revision uint64
	timer    *time.Timer
	closed   bool
}

// Option configures a Checker.
type Option func(*Checker)

// WithQuietPeriod overrides the debounce window.
func WithQuietPeriod(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.quiet = d
		}
	}
}

// WithMinLength overrides the minimum triggering input length.
func WithMinLength(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.minLen = n
		}
	}
}

// NewChecker creates a checker that delivers results to onResult. The
// callback runs on the checker's timer goroutine and must not block.
func NewChecker(check CheckFunc, onResult func(Result), log logger.Logger, opts ...Option) *Checker {
	c := &Checker{
		check:    check,
		onResult: onResult,
		quiet:    DefaultQuietPeriod,
		minLen:   DefaultMinLength,
		log:      log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Input records a new input revision. Values shorter than the minimum
// length never trigger a check and also invalidate any pending one, so a
// deletion back below the threshold silences the field.
func (c *Checker) Input(ctx context.Context, value string) {
	value = strings.TrimSpace(value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.revision++
	rev := c.revision

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	if len(value) < c.minLen {
		return
	}

	c.timer = time.AfterFunc(c.quiet, func() {
		c.fire(ctx, rev, value)
	})
}

// Close invalidates pending timers and all in-flight results.
func (c *Checker) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.revision++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// fire issues the backend call for one surviving revision and applies the
// result only if it is still the newest one.
func (c *Checker) fire(ctx context.Context, rev uint64, value string) {
	c.mu.Lock()
	if c.closed || rev != c.revision {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	available, err := c.check(ctx, value)

	c.mu.Lock()
	stale := c.closed || rev != c.revision
	c.mu.Unlock()
	if stale {
		c.log.Debug("Dropping stale availability result", logger.String("value", value))
		return
	}

	c.onResult(Result{Value: value, Available: available, Err: err})
}
