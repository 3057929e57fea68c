package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonesrussell/north-cloud/dashboard/internal/logger"
)

// DefaultPollInterval matches the dashboard's auto-refresh cadence.
const DefaultPollInterval = 5 * time.Second

// Poller re-invokes a fetcher on a fixed interval while started. Fetches
// run sequentially: a tick that fires while the previous fetch is still
// unresolved is skipped, so in-flight requests never overlap and results
// cannot arrive out of order from the polling loop itself.
type Poller struct {
	fetcher  *Fetcher
	interval time.Duration
	log      logger.Logger

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	stopped  sync.WaitGroup
	fetching chan struct{} // 1-slot token guarding a fetch in flight
}

// NewPoller creates a poller. A non-positive interval falls back to
// DefaultPollInterval.
func NewPoller(fetcher *Fetcher, interval time.Duration, log logger.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	p := &Poller{
		fetcher:  fetcher,
		interval: interval,
		log:      log,
		fetching: make(chan struct{}, 1),
	}
	p.fetching <- struct{}{}
	return p
}

// Start begins polling. The first fetch happens immediately. Returns an
// error if the poller is already running.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return errors.New("poller already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.stopped.Add(1)

	p.log.Info("Poller starting", logger.Duration("interval", p.interval))
	go p.run(ctx, p.stopCh)
	return nil
}

// Stop halts the polling loop and waits for it to exit. A fetch already in
// flight completes in the background; its result is still applied to the
// fetcher unless the fetcher itself has been closed.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopCh)
	p.mu.Unlock()

	p.stopped.Wait()
	p.log.Info("Poller stopped")
}

func (p *Poller) run(ctx context.Context, stopCh chan struct{}) {
	defer p.stopped.Done()

	p.tryRefresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tryRefresh(ctx)
		}
	}
}

// tryRefresh runs one fetch unless a previous one is still unresolved, in
// which case the tick is dropped.
func (p *Poller) tryRefresh(ctx context.Context) {
	select {
	case <-p.fetching:
	default:
		p.fetcher.metrics.PollSkippedTotal.Inc()
		p.log.Debug("Skipping poll tick, previous fetch still in flight")
		return
	}

	go func() {
		defer func() { p.fetching <- struct{}{} }()
		// Refresh owns stale-rejection and error bookkeeping.
		_ = p.fetcher.Refresh(ctx)
	}()
}
