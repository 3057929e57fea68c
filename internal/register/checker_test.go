package register_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/dashboard/internal/logger"
	"github.com/jonesrussell/north-cloud/dashboard/internal/register"
)

const (
	testQuiet = 40 * time.Millisecond
	testWait  = 2 * time.Second
	testTick  = 5 * time.Millisecond
)

// resultSink collects delivered results safely across goroutines.
type resultSink struct {
	mu      sync.Mutex
	results []register.Result
}

func (s *resultSink) record(r register.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
}

func (s *resultSink) snapshot() []register.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]register.Result, len(s.results))
	copy(out, s.results)
	return out
}

func TestCheckerFiresOnceAfterQuietPeriod(t *testing.T) {
	var calls atomic.Int64
	check := func(_ context.Context, value string) (bool, error) {
		calls.Add(1)
		return value == "free-name", nil
	}

	sink := &resultSink{}
	c := register.NewChecker(check, sink.record, logger.NewNop(), register.WithQuietPeriod(testQuiet))
	defer c.Close()

	// Keystrokes arriving inside the quiet window collapse into a single
	// check for the final value.
	ctx := context.Background()
	c.Input(ctx, "fre")
	c.Input(ctx, "free-na")
	c.Input(ctx, "free-name")

	require.Eventually(t, func() bool {
		return len(sink.snapshot()) == 1
	}, testWait, testTick)

	got := sink.snapshot()[0]
	assert.Equal(t, "free-name", got.Value)
	assert.True(t, got.Available)
	assert.NoError(t, got.Err)

	// No trailing extra checks for the earlier revisions.
	time.Sleep(3 * testQuiet)
	assert.EqualValues(t, 1, calls.Load())
	assert.Len(t, sink.snapshot(), 1)
}

func TestCheckerIgnoresShortInput(t *testing.T) {
	var calls atomic.Int64
	check := func(context.Context, string) (bool, error) {
		calls.Add(1)
		return true, nil
	}

	sink := &resultSink{}
	c := register.NewChecker(check, sink.record, logger.NewNop(), register.WithQuietPeriod(testQuiet))
	defer c.Close()

	c.Input(context.Background(), "ab")
	c.Input(context.Background(), "  a  ") // whitespace does not count

	time.Sleep(3 * testQuiet)
	assert.Zero(t, calls.Load())
	assert.Empty(t, sink.snapshot())
}

func TestCheckerDeletionBelowMinimumSilencesPendingCheck(t *testing.T) {
	var calls atomic.Int64
	check := func(context.Context, string) (bool, error) {
		calls.Add(1)
		return true, nil
	}

	sink := &resultSink{}
	c := register.NewChecker(check, sink.record, logger.NewNop(), register.WithQuietPeriod(testQuiet))
	defer c.Close()

	c.Input(context.Background(), "abcdef")
	c.Input(context.Background(), "ab") // backspaced below the threshold

	time.Sleep(3 * testQuiet)
	assert.Zero(t, calls.Load(), "pending check invalidated by the short revision")
	assert.Empty(t, sink.snapshot())
}

func TestCheckerDropsStaleResponse(t *testing.T) {
	// The first check blocks until released; by then a newer revision has
	// fired, so the slow response must be discarded.
	release := make(chan struct{})
	check := func(_ context.Context, value string) (bool, error) {
		if value == "old-value" {
			<-release
		}
		return value == "new-value", nil
	}

	sink := &resultSink{}
	c := register.NewChecker(check, sink.record, logger.NewNop(), register.WithQuietPeriod(testQuiet))
	defer c.Close()

	ctx := context.Background()
	c.Input(ctx, "old-value")
	time.Sleep(2 * testQuiet) // let the first check start and park

	c.Input(ctx, "new-value")
	require.Eventually(t, func() bool {
		rs := sink.snapshot()
		return len(rs) == 1 && rs[0].Value == "new-value"
	}, testWait, testTick)

	close(release)
	time.Sleep(2 * testQuiet)

	rs := sink.snapshot()
	require.Len(t, rs, 1, "stale response must not be delivered")
	assert.Equal(t, "new-value", rs[0].Value)
	assert.True(t, rs[0].Available)
}

func TestCheckerDeliversBackendError(t *testing.T) {
	wantErr := errors.New("availability lookup failed")
	check := func(context.Context, string) (bool, error) {
		return false, wantErr
	}

	sink := &resultSink{}
	c := register.NewChecker(check, sink.record, logger.NewNop(), register.WithQuietPeriod(testQuiet))
	defer c.Close()

	c.Input(context.Background(), "someone")
	require.Eventually(t, func() bool {
		return len(sink.snapshot()) == 1
	}, testWait, testTick)

	got := sink.snapshot()[0]
	assert.ErrorIs(t, got.Err, wantErr)
	assert.False(t, got.Available)
}

func TestCheckerCloseInvalidatesPendingWork(t *testing.T) {
	var calls atomic.Int64
	check := func(context.Context, string) (bool, error) {
		calls.Add(1)
		return true, nil
	}

	sink := &resultSink{}
	c := register.NewChecker(check, sink.record, logger.NewNop(), register.WithQuietPeriod(testQuiet))

	c.Input(context.Background(), "abcdef")
	c.Close()

	time.Sleep(3 * testQuiet)
	assert.Zero(t, calls.Load())
	assert.Empty(t, sink.snapshot())

	// Input after Close is a no-op.
	c.Input(context.Background(), "ghijkl")
	time.Sleep(2 * testQuiet)
	assert.Zero(t, calls.Load())
}
