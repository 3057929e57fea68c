package jobs_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/dashboard/internal/jobs"
	"github.com/jonesrussell/north-cloud/dashboard/internal/logger"
	"github.com/jonesrussell/north-cloud/dashboard/internal/models"
)

const (
	testWait = 2 * time.Second
	testTick = 5 * time.Millisecond
)

// slowLister delays every call and tracks the number of calls running
// concurrently.
type slowLister struct {
	delay time.Duration

	calls      atomic.Int64
	inFlight   atomic.Int64
	maxInFlght atomic.Int64

	mu sync.Mutex
}

func (s *slowLister) ListJobs(ctx context.Context, _ *models.Status, _, _ int) (*models.JobPage, error) {
	s.calls.Add(1)

	now := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	s.mu.Lock()
	if now > s.maxInFlght.Load() {
		s.maxInFlght.Store(now)
	}
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.delay):
	}
	return &models.JobPage{}, nil
}

func TestPollerNeverOverlapsFetches(t *testing.T) {
	// Fetches take several intervals; ticks in between must be skipped,
	// not queued behind the in-flight request.
	lister := &slowLister{delay: 60 * time.Millisecond}
	f := jobs.NewFetcher(lister, 10, newTestMetrics(), logger.NewNop())
	defer f.Close()

	p := jobs.NewPoller(f, 10*time.Millisecond, logger.NewNop())
	require.NoError(t, p.Start(context.Background()))

	time.Sleep(200 * time.Millisecond)
	p.Stop()

	assert.EqualValues(t, 1, lister.maxInFlght.Load(), "fetches must never overlap")
	assert.Greater(t, lister.calls.Load(), int64(1), "poller should keep fetching")
}

func TestPollerStartIsImmediateAndStopHalts(t *testing.T) {
	lister := &slowLister{delay: time.Millisecond}
	f := jobs.NewFetcher(lister, 10, newTestMetrics(), logger.NewNop())
	defer f.Close()

	p := jobs.NewPoller(f, 50*time.Millisecond, logger.NewNop())
	require.NoError(t, p.Start(context.Background()))

	// First fetch fires without waiting a full interval.
	require.Eventually(t, func() bool {
		return lister.calls.Load() >= 1
	}, testWait, testTick)

	p.Stop()
	// A fetch dispatched just before Stop may still be landing.
	time.Sleep(20 * time.Millisecond)
	after := lister.calls.Load()
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, after, lister.calls.Load(), "no fetches after Stop")
}

func TestPollerRejectsDoubleStart(t *testing.T) {
	lister := &slowLister{delay: time.Millisecond}
	f := jobs.NewFetcher(lister, 10, newTestMetrics(), logger.NewNop())
	defer f.Close()

	p := jobs.NewPoller(f, 50*time.Millisecond, logger.NewNop())
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	assert.Error(t, p.Start(context.Background()))
}
